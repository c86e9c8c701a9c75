package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"modelrepo/internal/application"
	"modelrepo/internal/application/commands"
	"modelrepo/internal/domain"
)

var (
	viewLeft float64
	viewTop  float64
)

var createCmd = &cobra.Command{
	Use:   "create <parent-id> <type> <name>",
	Short: "Create an element",
	Long: `Create a named element under a parent. The owning field is chosen from
the parent's type, preferring the most specific field that accepts <type>.
Run "create types <parent-id>" to see what a parent can hold.

Examples:
  modelrepo-cli create AAAAAAGKf0ZbJj4= Class Order
  modelrepo-cli create AAAAAAGKf0ZbJj4= Property total
  modelrepo-cli create relationship Dependency <source-id> <target-id>
  modelrepo-cli create view <diagram-id> <model-id> --left 40 --top 80`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		return edit(cmd, func() (string, error) {
			result, err := commands.NewCreateElementCommand(GetSession().Repo, args[0], args[1], args[2]).Execute(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s [%s]", result.Message, result.Element.ID()), nil
		})
	},
}

var createRelationshipCmd = &cobra.Command{
	Use:   "relationship <type> <source-id> <target-id> [name]",
	Short: "Create a relationship between two elements",
	Long: `Create a Dependency, Generalization or Association. The relationship is
owned by the source element's owner.

Examples:
  modelrepo-cli create relationship Generalization <child-id> <parent-id>
  modelrepo-cli create relationship Association <a-id> <b-id> places`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		name := ""
		if len(args) == 4 {
			name = args[3]
		}
		return edit(cmd, func() (string, error) {
			result, err := commands.NewCreateRelationshipCommand(GetSession().Repo, args[0], args[1], args[2], name).Execute(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s [%s]", result.Message, result.Element.ID()), nil
		})
	},
}

var createViewCmd = &cobra.Command{
	Use:   "view <diagram-id> <model-id>",
	Short: "Show a model element on a diagram",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		return edit(cmd, func() (string, error) {
			result, err := commands.NewCreateViewCommand(GetSession().Repo, args[0], args[1], viewLeft, viewTop).Execute(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s [%s]", result.Message, result.Element.ID()), nil
		})
	},
}

var createTypesCmd = &cobra.Command{
	Use:   "types <parent-id>",
	Short: "List the types an element can hold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := GetSession().Repo
		parent := repo.Get(args[0])
		if parent == nil {
			return fmt.Errorf("element %s not found", args[0])
		}
		out := cmd.OutOrStdout()
		types := commands.CreatableTypes(repo.Registry(), parent.TypeName())
		if len(types) == 0 {
			fmt.Fprintf(out, "%s holds no creatable elements\n", parent.TypeName())
		} else {
			fmt.Fprintln(out, strings.Join(types, "\n"))
		}
		if repo.Registry().IsKindOf(parent.TypeName(), domain.TypeModelElement) {
			fmt.Fprintf(out, "Relationships from %s: %s\n", parent.ID(), strings.Join(application.RelationshipTypes, ", "))
		}
		return nil
	},
}

func init() {
	createViewCmd.Flags().Float64Var(&viewLeft, "left", 0, "left edge of the node")
	createViewCmd.Flags().Float64Var(&viewTop, "top", 0, "top edge of the node")
	rootCmd.AddCommand(createCmd)
	createCmd.AddCommand(createRelationshipCmd, createViewCmd, createTypesCmd)
}
