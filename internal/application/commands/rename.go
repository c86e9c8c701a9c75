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

// RenameResult contains the result of a rename operation
type RenameResult struct {
	ID      string
	OldName string
	NewName string
	Message string
}

// RenameCommand renames a named element
type RenameCommand struct {
	repo    *repository.Repository
	ID      string
	NewName string
}

// NewRenameCommand creates a new RenameCommand
func NewRenameCommand(repo *repository.Repository, id, newName string) *RenameCommand {
	return &RenameCommand{
		repo:    repo,
		ID:      id,
		NewName: newName,
	}
}

// Validate checks if the rename operation is valid
func (c *RenameCommand) Validate() error {
	if err := application.ValidateRequired("id", c.ID); err != nil {
		return err
	}
	return application.ValidateRequired("name", c.NewName)
}

// Execute runs the rename command
func (c *RenameCommand) Execute(ctx context.Context) (*RenameResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	e, err := lookup(c.repo, "id", c.ID)
	if err != nil {
		return nil, err
	}
	if el := CheckRenameEligibility(e); !el.CanRename {
		return nil, &application.ValidationError{Field: "id", Message: el.Reason}
	}

	oldName := domain.NameOf(e)
	newName := strings.TrimSpace(c.NewName)
	if oldName != newName {
		_, err = record(c.repo, "rename", func(b *oplog.Builder) error {
			return b.FieldAssign(e, "name", newName)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to rename: %w", err)
		}
	}

	return &RenameResult{
		ID:      e.ID(),
		OldName: oldName,
		NewName: newName,
		Message: fmt.Sprintf("Renamed %s to %s", e.ID(), newName),
	}, nil
}

// RenameEligibility contains the result of checking if an element can be renamed
type RenameEligibility struct {
	CanRename bool
	Reason    string
}

// CheckRenameEligibility determines if an element carries a name
func CheckRenameEligibility(e domain.Element) RenameEligibility {
	if _, ok := e.(domain.Named); ok {
		return RenameEligibility{CanRename: true}
	}
	return RenameEligibility{
		CanRename: false,
		Reason:    fmt.Sprintf("cannot rename %s", e.TypeName()),
	}
}
