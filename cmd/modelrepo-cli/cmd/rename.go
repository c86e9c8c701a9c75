package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"modelrepo/internal/application/commands"
)

var setField string

var renameCmd = &cobra.Command{
	Use:   "rename <id> <new-name>",
	Short: "Rename an element",
	Long: `Rename a model element. With --field, assign any other single-valued field
instead; the value is parsed according to the field's kind.

Examples:
  modelrepo-cli rename AAAAAAGKf0ZbJj4= Purchase
  modelrepo-cli rename AAAAAAGKf0ZbJj4= true --field isAbstract`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		repo := GetSession().Repo
		return edit(cmd, func() (string, error) {
			if setField != "" && setField != "name" {
				result, err := commands.NewSetFieldCommand(repo, args[0], setField, args[1]).Execute(ctx)
				if err != nil {
					return "", err
				}
				return result.Message, nil
			}
			result, err := commands.NewRenameCommand(repo, args[0], args[1]).Execute(ctx)
			if err != nil {
				return "", err
			}
			return result.Message, nil
		})
	},
}

func init() {
	renameCmd.Flags().StringVarP(&setField, "field", "f", "", "field to assign instead of name")
	rootCmd.AddCommand(renameCmd)
}
