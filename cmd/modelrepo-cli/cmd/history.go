package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent edits from the index journal",
	Long: `Show the most recent operations journaled in the sqlite index, newest
first. Every edit made by the CLI, the TUI or the MCP server while the index
is enabled is recorded, including undo and redo.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoDocument: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := openIndex()
		if err != nil {
			return err
		}
		defer index.Close()

		entries, err := index.Recent(historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No history")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%5d  %s  %-4s  %s (%d changes)\n",
				e.Seq, e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Kind, e.Name, e.OpCount)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of entries")
	rootCmd.AddCommand(historyCmd)
}
