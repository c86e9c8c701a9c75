package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"modelrepo/internal/adapters/filesystem"
	"modelrepo/internal/codec"
	"modelrepo/internal/config"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old> [new]",
	Short: "Compare two documents element by element",
	Long: `Compare two documents element by element and field by field. Embedded
children are compared as separate elements. With one argument the document is
compared against the --document file.

Examples:
  modelrepo-cli diff backup.json
  modelrepo-cli diff before.json after.json`,
	Args:        cobra.RangeArgs(1, 2),
	Annotations: map[string]string{annotationNoDocument: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		newer := config.ExpandPath(documentPath)
		if len(args) == 2 {
			newer = args[1]
		}

		store := filesystem.NewStore()
		left, err := store.Load(args[0])
		if err != nil {
			return err
		}
		right, err := store.Load(newer)
		if err != nil {
			return err
		}

		d := codec.DiffDocuments(left, right)
		if d.IsEmpty() {
			fmt.Fprintln(cmd.OutOrStdout(), "No differences")
			return nil
		}
		printDocumentDiff(cmd.OutOrStdout(), d)
		return nil
	},
}

func printDocumentDiff(w io.Writer, d *codec.DocumentDiff) {
	for _, id := range d.Added {
		fmt.Fprintf(w, "+ %s\n", id)
	}
	for _, id := range d.Removed {
		fmt.Fprintf(w, "- %s\n", id)
	}

	ids := make([]string, 0, len(d.Modified))
	for id := range d.Modified {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fd := d.Modified[id]
		fmt.Fprintf(w, "~ %s\n", id)
		for _, name := range sortedKeys(fd.Added) {
			fmt.Fprintf(w, "    + %s: %s\n", name, render(fd.Added[name]))
		}
		for _, name := range fd.Removed {
			fmt.Fprintf(w, "    - %s\n", name)
		}
		for _, name := range sortedKeys(fd.Modified) {
			m := fd.Modified[name]
			fmt.Fprintf(w, "    ~ %s: %s -> %s\n", name, render(m.Old), render(m.New))
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func render(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
