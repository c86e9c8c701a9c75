package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"modelrepo/internal/application/commands"
	"modelrepo/internal/domain"
)

var deletePlan bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete elements",
	Long: `Delete elements together with everything they own.

Relationships attached to a deleted model element, views presenting it and
edges whose head or tail is deleted go in the same step. Use --plan to list
them without deleting anything.

Examples:
  modelrepo-cli delete AAAAAAGKf0ZbJj4=
  modelrepo-cli delete AAAAAAGKf0ZbJj4= AAAAAAGKf0ZbJj8= --plan`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		deleteCmd := commands.NewDeleteCommand(GetSession().Repo, args...)

		if deletePlan {
			plan, err := deleteCmd.Plan()
			if err != nil {
				return err
			}
			for _, e := range plan {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s %s\n", e.TypeName(), e.ID(), domain.NameOf(e))
			}
			return nil
		}

		return edit(cmd, func() (string, error) {
			result, err := deleteCmd.Execute(ctx)
			if err != nil {
				return "", err
			}
			return result.Message, nil
		})
	},
}

func init() {
	deleteCmd.Flags().BoolVar(&deletePlan, "plan", false, "list what would be deleted")
	rootCmd.AddCommand(deleteCmd)
}
