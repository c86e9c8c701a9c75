package commands

import (
	"context"
	"fmt"

	"modelrepo/internal/application"
	"modelrepo/internal/codec"
	"modelrepo/internal/domain"
	"modelrepo/internal/oplog"
	"modelrepo/internal/repository"
)

// CloneResult contains the result of a clone operation
type CloneResult struct {
	Element  domain.Element
	SourceID string
	Remap    map[string]string // Source id to copy id, for every cloned element
	Message  string
}

// CloneCommand copies an element and everything it owns under a destination.
// References between cloned elements point at the copies, references leaving
// the subtree keep their targets.
type CloneCommand struct {
	repo          *repository.Repository
	ID            string
	DestinationID string
}

// NewCloneCommand creates a new CloneCommand. An empty destination clones
// next to the source.
func NewCloneCommand(repo *repository.Repository, id, destinationID string) *CloneCommand {
	return &CloneCommand{repo: repo, ID: id, DestinationID: destinationID}
}

// Execute runs the clone command
func (c *CloneCommand) Execute(ctx context.Context) (*CloneResult, error) {
	src, err := lookup(c.repo, "id", c.ID)
	if err != nil {
		return nil, err
	}
	dest := src.Parent()
	if c.DestinationID != "" {
		if dest, err = lookup(c.repo, "destinationID", c.DestinationID); err != nil {
			return nil, err
		}
	}
	if dest == nil {
		return nil, &application.ValidationError{Field: "id", Message: "the project root cannot be cloned"}
	}

	reg := c.repo.Registry()
	field, ok := reg.ContainmentField(dest.TypeName(), src.TypeName())
	if !ok {
		return nil, &application.ContainmentError{
			Type:     src.TypeName(),
			ParentID: dest.ID(),
			Reason:   fmt.Sprintf("%s cannot hold %s", dest.TypeName(), src.TypeName()),
		}
	}

	tree, remap, err := codec.Clone(c.repo.SerializeElement(src))
	if err != nil {
		return nil, fmt.Errorf("failed to clone: %w", err)
	}
	tree[codec.KeyParent] = codec.RefToken(dest.ID())
	if name, ok := tree["name"].(string); ok && name != "" {
		tree["name"] = name + " (copy)"
	}

	rd := codec.NewReader(reg, nil)
	copied := rd.ReadElement(tree)
	if copied == nil {
		return nil, fmt.Errorf("failed to clone: %s could not be read back", src.ID())
	}
	rd.Resolve(c.repo.Get)

	_, err = record(c.repo, "clone "+label(src), func(b *oplog.Builder) error {
		if err := b.Insert(copied); err != nil {
			return err
		}
		return placeChild(b, dest, field, copied)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone: %w", err)
	}

	created := c.repo.Get(copied.ID())
	return &CloneResult{
		Element:  created,
		SourceID: src.ID(),
		Remap:    remap,
		Message:  fmt.Sprintf("Cloned %s into %s", label(src), label(dest)),
	}, nil
}
