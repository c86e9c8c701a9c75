package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"modelrepo/internal/application/commands"
	"modelrepo/internal/domain"
)

var moveCopy bool

var moveCmd = &cobra.Command{
	Use:   "move <id> <dest-id>",
	Short: "Move an element to a new owner",
	Long: `Move an element to a new owner. The owning field is chosen from the
destination's type. With --copy, the element and its subtree are cloned under
the destination instead, with fresh ids.

Examples:
  modelrepo-cli move <class-id> <package-id>
  modelrepo-cli move <class-id> <package-id> --copy
  modelrepo-cli move targets <class-id>
  modelrepo-cli move reorder <property-id> 0`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		repo := GetSession().Repo
		return edit(cmd, func() (string, error) {
			if moveCopy {
				result, err := commands.NewCloneCommand(repo, args[0], args[1]).Execute(ctx)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%s [%s]", result.Message, result.Element.ID()), nil
			}
			result, err := commands.NewMoveCommand(repo, args[0], args[1]).Execute(ctx)
			if err != nil {
				return "", err
			}
			return result.Message, nil
		})
	},
}

var moveTargetsCmd = &cobra.Command{
	Use:   "targets <id>",
	Short: "List the elements an element can move to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := GetSession().Repo
		if repo.Get(args[0]) == nil {
			return fmt.Errorf("element %s not found", args[0])
		}
		for _, e := range commands.MoveTargets(repo, args[0]) {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s %s\n", e.TypeName(), e.ID(), domain.OwnerPath(e))
		}
		return nil
	},
}

var moveReorderCmd = &cobra.Command{
	Use:   "reorder <id> <position>",
	Short: "Move an element within its owner's list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		position, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[1])
		}
		ctx := context.Background()
		return edit(cmd, func() (string, error) {
			result, err := commands.NewReorderCommand(GetSession().Repo, args[0], position).Execute(ctx)
			if err != nil {
				return "", err
			}
			return result.Message, nil
		})
	},
}

func init() {
	moveCmd.Flags().BoolVar(&moveCopy, "copy", false, "clone instead of moving")
	rootCmd.AddCommand(moveCmd)
	moveCmd.AddCommand(moveTargetsCmd, moveReorderCmd)
}
