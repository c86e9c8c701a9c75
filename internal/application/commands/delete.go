package commands

import (
	"context"
	"fmt"
	"strings"

	"modelrepo/internal/application"
	"modelrepo/internal/domain"
	"modelrepo/internal/oplog"
	"modelrepo/internal/repository"
)

// DeleteResult contains the result of a delete operation
type DeleteResult struct {
	Deleted []string // Every element removed, owned descendants included
	Message string
}

// DeleteCommand deletes elements together with what would be left
// meaningless without them: relationships attached to a deleted model
// element, views presenting it, and edges whose head or tail is deleted.
type DeleteCommand struct {
	repo *repository.Repository
	IDs  []string
}

// NewDeleteCommand creates a new DeleteCommand
func NewDeleteCommand(repo *repository.Repository, ids ...string) *DeleteCommand {
	return &DeleteCommand{repo: repo, IDs: ids}
}

// Validate checks if the delete operation is valid
func (c *DeleteCommand) Validate() error {
	if len(c.IDs) == 0 {
		return application.ValidateRequired("id", "")
	}
	for _, id := range c.IDs {
		if err := application.ValidateRequired("id", id); err != nil {
			return err
		}
	}
	return nil
}

// Plan returns the elements the command removes, in the order they are
// recorded. Owned descendants are not listed; they go with their owner.
func (c *DeleteCommand) Plan() ([]domain.Element, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var plan []domain.Element
	doomed := make(map[string]bool)
	add := func(e domain.Element) bool {
		if doomed[e.ID()] {
			return false
		}
		plan = append(plan, e)
		for _, x := range c.repo.Registry().Subtree(e) {
			doomed[x.ID()] = true
		}
		return true
	}

	for _, id := range c.IDs {
		e, err := lookup(c.repo, "id", id)
		if err != nil {
			return nil, err
		}
		if e == c.repo.Root() {
			return nil, &application.ValidationError{Field: "id", Message: "cannot delete the project root"}
		}
		add(e)
	}

	for grown := true; grown; {
		grown = false
		for _, e := range c.repo.All() {
			if doomed[e.ID()] {
				continue
			}
			if c.dependsOnDoomed(e, doomed) && add(e) {
				grown = true
			}
		}
	}
	return plan, nil
}

func (c *DeleteCommand) dependsOnDoomed(e domain.Element, doomed map[string]bool) bool {
	reg := c.repo.Registry()
	switch x := e.(type) {
	case interface {
		DirectedBase() *domain.DirectedRelationship
	}:
		d := x.DirectedBase()
		return doomed[string(d.Source)] || doomed[string(d.Target)]
	case *domain.Association:
		for _, end := range []*domain.AssociationEnd{x.End1, x.End2} {
			if end != nil && doomed[string(end.Reference)] {
				return true
			}
		}
	case *domain.EdgeView:
		if doomed[string(x.Head)] || doomed[string(x.Tail)] {
			return true
		}
	}
	if reg.IsKindOf(e.TypeName(), domain.TypeView) {
		if v, ok := e.(interface{ ViewBase() *domain.View }); ok {
			return doomed[string(v.ViewBase().Model)]
		}
	}
	return false
}

// Execute runs the delete command
func (c *DeleteCommand) Execute(ctx context.Context) (*DeleteResult, error) {
	plan, err := c.Plan()
	if err != nil {
		return nil, err
	}

	var deleted []string
	for _, e := range plan {
		for _, x := range c.repo.Registry().Subtree(e) {
			deleted = append(deleted, x.ID())
		}
	}

	name := "delete " + strings.ToLower(plan[0].TypeName())
	if len(plan) > 1 {
		name = fmt.Sprintf("delete %d elements", len(plan))
	}
	_, err = record(c.repo, name, func(b *oplog.Builder) error {
		return c.repo.RecordDelete(b, plan...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete: %w", err)
	}

	return &DeleteResult{
		Deleted: deleted,
		Message: fmt.Sprintf("Deleted %s and %d related element(s)", label(plan[0]), len(deleted)-1),
	}, nil
}
