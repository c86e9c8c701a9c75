package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"modelrepo/internal/application/commands"
)

var selectCmd = &cobra.Command{
	Use:   "select <selector>",
	Short: "List the elements matching a selector",
	Long: `Evaluate a selector expression and list the matching elements.

Selector terms are folded left to right:
  ::            children of each element
  @Type         keep elements of Type or a subtype
  .field        the elements held by field
  [field=value] keep elements whose field renders as value
  Name          keep elements named Name

Examples:
  modelrepo-cli select '@Class'
  modelrepo-cli select 'Domain::Order.attributes'
  modelrepo-cli select '@Model::@Class[isAbstract=true]'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		results, err := commands.NewSelectCommand(GetSession().Repo, args[0]).Execute(ctx)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No elements matched")
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s %s\n", r.Type, r.ID, r.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
}
