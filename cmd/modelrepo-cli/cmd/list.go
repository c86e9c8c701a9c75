package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"modelrepo/internal/application/commands"
)

var listCmd = &cobra.Command{
	Use:   "list [parent-id]",
	Short: "List the elements owned by a parent",
	Long: `List the elements directly owned by a parent, or by the project root
when no parent is given.

Examples:
  modelrepo-cli list
  modelrepo-cli list AAAAAAGKf0ZbJj4=`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parentID := ""
		if len(args) == 1 {
			parentID = args[0]
		}
		ctx := context.Background()
		children, err := commands.NewListChildrenCommand(GetSession().Repo, parentID).Execute(ctx)
		if err != nil {
			return err
		}

		for _, c := range children {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s %s\n", c.Type, c.ID, c.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
