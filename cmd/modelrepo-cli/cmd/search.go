package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"modelrepo/internal/application/commands"
)

var (
	searchType  string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search element names",
	Long: `Search for elements by name.

Results are ranked by relevance using fuzzy matching.

Examples:
  modelrepo-cli search order
  modelrepo-cli search total --type Property`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]
		ctx := context.Background()

		searchCmd := commands.NewSearchCommand(GetSession().Repo, query, searchType)
		results, err := searchCmd.Execute(ctx)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No results found")
			return nil
		}

		if searchLimit > 0 && len(results) > searchLimit {
			results = results[:searchLimit]
		}
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s %s\n", r.Type, r.ID, r.Path)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "", "only match this type and its subtypes")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum results, 0 for all")
	rootCmd.AddCommand(searchCmd)
}
