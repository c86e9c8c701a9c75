package commands

import (
	"context"

	"modelrepo/internal/application"
	"modelrepo/internal/domain"
	"modelrepo/internal/repository"
)

// ListChildrenCommand lists the elements owned by a parent
type ListChildrenCommand struct {
	repo     *repository.Repository
	ParentID string
}

// NewListChildrenCommand creates a new ListChildrenCommand. An empty
// parentID lists the children of the project root.
func NewListChildrenCommand(repo *repository.Repository, parentID string) *ListChildrenCommand {
	return &ListChildrenCommand{
		repo:     repo,
		ParentID: parentID,
	}
}

// Execute runs the list children command
func (c *ListChildrenCommand) Execute(ctx context.Context) ([]domain.SearchResult, error) {
	parent := c.repo.Root()
	if c.ParentID != "" {
		var err error
		if parent, err = lookup(c.repo, "parentID", c.ParentID); err != nil {
			return nil, err
		}
	}
	if parent == nil {
		return nil, nil
	}
	children := c.repo.Registry().Children(parent)
	out := make([]domain.SearchResult, 0, len(children))
	for _, e := range children {
		out = append(out, application.ToSearchResult(e))
	}
	return out, nil
}

// BuildTreeCommand builds the complete ownership tree
type BuildTreeCommand struct {
	repo *repository.Repository
}

// NewBuildTreeCommand creates a new BuildTreeCommand
func NewBuildTreeCommand(repo *repository.Repository) *BuildTreeCommand {
	return &BuildTreeCommand{repo: repo}
}

// Execute runs the build tree command
func (c *BuildTreeCommand) Execute(ctx context.Context) (*domain.TreeNode, error) {
	root := c.repo.Root()
	if root == nil {
		return nil, application.ErrNotFound
	}
	tree := domain.BuildTree(c.repo.Registry(), root)
	tree.Expand()
	return tree, nil
}
