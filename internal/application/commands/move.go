package commands

import (
	"context"
	"fmt"

	"modelrepo/internal/application"
	"modelrepo/internal/domain"
	"modelrepo/internal/oplog"
	"modelrepo/internal/repository"
)

// MoveResult contains the result of a move operation
type MoveResult struct {
	ID          string
	OldParentID string
	NewParentID string
	Field       string
	Message     string
}

// MoveCommand changes the owner of an element
type MoveCommand struct {
	repo          *repository.Repository
	ID            string
	DestinationID string
}

// NewMoveCommand creates a new MoveCommand
func NewMoveCommand(repo *repository.Repository, id, destinationID string) *MoveCommand {
	return &MoveCommand{
		repo:          repo,
		ID:            id,
		DestinationID: destinationID,
	}
}

// Validate checks if the move operation is valid
func (c *MoveCommand) Validate() error {
	if err := application.ValidateRequired("id", c.ID); err != nil {
		return err
	}
	return application.ValidateRequired("destinationID", c.DestinationID)
}

// Execute runs the move command
func (c *MoveCommand) Execute(ctx context.Context) (*MoveResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	e, err := lookup(c.repo, "id", c.ID)
	if err != nil {
		return nil, err
	}
	dest, err := lookup(c.repo, "destinationID", c.DestinationID)
	if err != nil {
		return nil, err
	}
	fail := func(reason string) error {
		return &application.MoveError{SourceID: e.ID(), DestID: dest.ID(), Reason: reason}
	}

	parent := e.Parent()
	switch {
	case parent == nil:
		return nil, fail("the project root cannot be moved")
	case dest == e || domain.IsDescendant(dest, e):
		return nil, fail("destination is inside the moved element")
	case parent == dest:
		return nil, fail("element is already there")
	}

	reg := c.repo.Registry()
	from, ok := reg.OwningField(parent, e)
	if !ok {
		return nil, fail("element is not held by its owner")
	}
	to, ok := reg.ContainmentField(dest.TypeName(), e.TypeName())
	if !ok {
		return nil, fail(fmt.Sprintf("%s cannot hold %s", dest.TypeName(), e.TypeName()))
	}
	if !to.Kind.IsMany() {
		if current, _ := to.Get(dest).(domain.Element); current != nil {
			return nil, fail(to.Name + " is already set")
		}
	}

	_, err = record(c.repo, "move "+label(e), func(b *oplog.Builder) error {
		if from.Name == to.Name {
			return b.FieldRelocate(e, to.Name, parent, dest)
		}
		if from.Kind.IsMany() {
			if err := b.FieldRemove(parent, from.Name, e); err != nil {
				return err
			}
		} else if err := b.FieldAssign(parent, from.Name, nil); err != nil {
			return err
		}
		if to.Kind.IsMany() {
			return b.FieldInsert(dest, to.Name, e)
		}
		return b.FieldAssign(dest, to.Name, e)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to move: %w", err)
	}

	return &MoveResult{
		ID:          e.ID(),
		OldParentID: parent.ID(),
		NewParentID: dest.ID(),
		Field:       to.Name,
		Message:     fmt.Sprintf("Moved %s to %s", label(e), label(dest)),
	}, nil
}

// MoveTargets lists the elements MoveCommand would accept as a destination
// for id, in document order.
func MoveTargets(repo *repository.Repository, id string) []domain.Element {
	e := repo.Get(id)
	if e == nil || e.Parent() == nil {
		return nil
	}
	reg := repo.Registry()
	var out []domain.Element
	for _, dest := range repo.All() {
		if dest == e || dest == e.Parent() || domain.IsDescendant(dest, e) {
			continue
		}
		to, ok := reg.ContainmentField(dest.TypeName(), e.TypeName())
		if !ok {
			continue
		}
		if !to.Kind.IsMany() {
			if current, _ := to.Get(dest).(domain.Element); current != nil {
				continue
			}
		}
		out = append(out, dest)
	}
	return out
}

// ReorderResult contains the result of a reorder operation
type ReorderResult struct {
	ID      string
	Field   string
	From    int
	To      int
	Message string
}

// ReorderCommand moves an element to a new position within its owner's array
type ReorderCommand struct {
	repo     *repository.Repository
	ID       string
	Position int
}

// NewReorderCommand creates a new ReorderCommand
func NewReorderCommand(repo *repository.Repository, id string, position int) *ReorderCommand {
	return &ReorderCommand{repo: repo, ID: id, Position: position}
}

// Execute runs the reorder command
func (c *ReorderCommand) Execute(ctx context.Context) (*ReorderResult, error) {
	e, err := lookup(c.repo, "id", c.ID)
	if err != nil {
		return nil, err
	}
	parent := e.Parent()
	if parent == nil {
		return nil, &application.ValidationError{Field: "id", Message: "the project root has no siblings"}
	}
	a, ok := c.repo.Registry().OwningField(parent, e)
	if !ok || !a.Kind.IsMany() {
		return nil, &application.ValidationError{Field: "id", Message: fmt.Sprintf("%s is not held in an array", e.ID())}
	}
	n := a.Len(parent)
	if c.Position < 0 || c.Position >= n {
		return nil, &application.ValidationError{
			Field:   "position",
			Message: fmt.Sprintf("position %d out of range [0, %d)", c.Position, n),
		}
	}

	from := a.IndexOf(parent, e.ID())
	if from != c.Position {
		_, err = record(c.repo, "reorder", func(b *oplog.Builder) error {
			return b.FieldReorder(parent, a.Name, e, c.Position)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to reorder: %w", err)
		}
	}
	return &ReorderResult{
		ID:      e.ID(),
		Field:   a.Name,
		From:    from,
		To:      c.Position,
		Message: fmt.Sprintf("Moved %s to position %d of %s", label(e), c.Position, a.Name),
	}, nil
}
