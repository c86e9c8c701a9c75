package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"modelrepo/internal/application/commands"
	"modelrepo/internal/codec"
	"modelrepo/internal/domain"
)

var (
	showAll  bool
	showJSON bool
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an element field by field",
	Long: `Show the fields of an element and the elements referring to it.
Fields holding their default value are hidden unless --all is given.

Examples:
  modelrepo-cli show AAAAAAGKf0ZbJj4=
  modelrepo-cli show AAAAAAGKf0ZbJj4= --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		out := cmd.OutOrStdout()
		repo := GetSession().Repo

		if showJSON {
			if _, err := commands.NewShowCommand(repo, args[0]).Execute(ctx); err != nil {
				return err
			}
			data, err := codec.Marshal(repo.SerializeElement(repo.Get(args[0])))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		detail, err := commands.NewShowCommand(repo, args[0]).Execute(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s %s [%s]\n", detail.Type, detail.Name, detail.ID)
		if detail.Path != "" {
			fmt.Fprintf(out, "  path: %s\n", detail.Path)
		}
		if detail.ParentID != "" {
			fmt.Fprintf(out, "  owner: %s (%s)\n", detail.ParentID, detail.Field)
		}
		for _, f := range detail.Fields {
			if f.Default && !showAll {
				continue
			}
			if f.Kind == domain.KindRefs.String() || f.Kind == domain.KindObjs.String() {
				fmt.Fprintf(out, "  %s: [%s]\n", f.Name, strings.Join(f.Items, ", "))
				continue
			}
			fmt.Fprintf(out, "  %s: %s\n", f.Name, f.Value)
		}
		if len(detail.Referrers) > 0 {
			fmt.Fprintln(out, "Referenced by:")
			for _, r := range detail.Referrers {
				fmt.Fprintf(out, "  %s %s [%s]\n", r.Type, r.Name, r.ID)
			}
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVarP(&showAll, "all", "a", false, "include fields holding their default value")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the serialized element")
	rootCmd.AddCommand(showCmd)
}
