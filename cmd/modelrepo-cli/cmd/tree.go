package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"modelrepo/internal/application"
	"modelrepo/internal/application/commands"
)

var treeDepth int

var treeCmd = &cobra.Command{
	Use:   "tree [id]",
	Short: "Display the ownership tree",
	Long: `Display the ownership tree of the document, or of the element with the
given id. Each line shows the element id, its owning field, type and name.

Examples:
  modelrepo-cli tree
  modelrepo-cli tree AAAAAAGKf0ZbJj4= --depth 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		buildCmd := commands.NewBuildTreeCommand(GetSession().Repo)
		root, err := buildCmd.Execute(ctx)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			if root = root.Find(args[0]); root == nil {
				return &application.NotFoundError{ID: args[0]}
			}
		}

		printTree(cmd.OutOrStdout(), root, 0)
		return nil
	},
}

func printTree(w io.Writer, node *application.TreeNode, depth int) {
	if node == nil {
		return
	}

	indent := strings.Repeat("  ", depth)
	field := ""
	if node.Field != "" {
		field = node.Field + ": "
	}
	fmt.Fprintf(w, "%s%s%s %s [%s]\n", indent, field, node.Type, node.Label(), node.ID)

	if treeDepth > 0 && depth+1 >= treeDepth {
		if len(node.Children) > 0 {
			fmt.Fprintf(w, "%s  … %d more\n", indent, len(node.Children))
		}
		return
	}
	for _, child := range node.Children {
		printTree(w, child, depth+1)
	}
}

func init() {
	treeCmd.Flags().IntVar(&treeDepth, "depth", 0, "levels to print, 0 for all")
	rootCmd.AddCommand(treeCmd)
}
