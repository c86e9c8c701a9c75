package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"modelrepo/internal/application/commands"
	"modelrepo/internal/domain"
)

var refsCmd = &cobra.Command{
	Use:   "refs <id>",
	Short: "List what refers to an element",
	Long: `List the elements holding references to an element, then the relationships
attached to it and the diagram views presenting it.

Example:
  modelrepo-cli refs AAAAAAGKf0ZbJj4=`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		out := cmd.OutOrStdout()
		repo := GetSession().Repo

		refs, err := commands.NewRefsCommand(repo, args[0]).Execute(ctx)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(refs.Referrers))
		for id := range refs.Referrers {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		fmt.Fprintf(out, "Referrers (%d):\n", len(ids))
		for _, id := range ids {
			e := repo.Get(id)
			if e == nil {
				continue
			}
			fmt.Fprintf(out, "  [%s] %s %s x%d\n", e.TypeName(), id, domain.NameOf(e), refs.Referrers[id])
		}
		fmt.Fprintf(out, "Relationships (%d):\n", len(refs.Relationships))
		for _, r := range refs.Relationships {
			fmt.Fprintf(out, "  [%s] %s %s\n", r.Type, r.ID, r.Name)
		}
		fmt.Fprintf(out, "Views (%d):\n", len(refs.Views))
		for _, v := range refs.Views {
			fmt.Fprintf(out, "  [%s] %s %s\n", v.Type, v.ID, v.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refsCmd)
}
