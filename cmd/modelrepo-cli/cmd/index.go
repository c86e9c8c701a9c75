package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"modelrepo/internal/adapters/sqlite"
	"modelrepo/internal/config"
	"modelrepo/internal/logger"
)

var indexLimit int

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the sqlite index",
	Long: `The sqlite index mirrors the document's elements and references for
lookups from other tools, and journals every edit made through modelrepo.`,
}

var indexSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebuild the index from the document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := openIndex()
		if err != nil {
			return err
		}
		defer index.Close()

		stats, err := sqlite.Sync(index, GetSession().Repo)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Synced %s: %d added, %d updated, %d deleted elements; %d added, %d deleted references (%s)\n",
			index.Path(), stats.NodesAdded, stats.NodesUpdated, stats.NodesDeleted, stats.EdgesAdded, stats.EdgesDeleted, stats.Duration)
		return nil
	},
}

var indexSearchCmd = &cobra.Command{
	Use:         "search <query>",
	Short:       "Search element names in the index",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationNoDocument: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := openIndex()
		if err != nil {
			return err
		}
		defer index.Close()

		nodes, err := index.SearchNames(args[0], indexLimit)
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No results found")
			return nil
		}
		for _, n := range nodes {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s %s\n", n.Type, n.ID, n.Name)
		}
		return nil
	},
}

var indexRefsCmd = &cobra.Command{
	Use:         "refs <id>",
	Short:       "List indexed references to and from an element",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationNoDocument: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := openIndex()
		if err != nil {
			return err
		}
		defer index.Close()

		to, err := index.RefsTo(args[0])
		if err != nil {
			return err
		}
		from, err := index.RefsFrom(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Referred to by (%d):\n", len(to))
		for _, e := range to {
			fmt.Fprintf(out, "  %s x%d\n", e.ReferrerID, e.Count)
		}
		fmt.Fprintf(out, "Refers to (%d):\n", len(from))
		for _, e := range from {
			fmt.Fprintf(out, "  %s x%d\n", e.RefereeID, e.Count)
		}
		return nil
	},
}

// openIndex opens the index for reading without touching the document
func openIndex() (*sqlite.Index, error) {
	if indexPath == "" {
		return nil, fmt.Errorf("no index configured")
	}
	index := sqlite.NewIndex(logger.For(logger.ComponentIndex))
	if err := index.Open(config.ExpandPath(indexPath)); err != nil {
		return nil, err
	}
	return index, nil
}

func init() {
	indexSearchCmd.Flags().IntVar(&indexLimit, "limit", 20, "maximum results")
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexSyncCmd, indexSearchCmd, indexRefsCmd)
}
