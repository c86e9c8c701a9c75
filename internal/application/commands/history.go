package commands

import (
	"context"
	"fmt"

	"modelrepo/internal/application"
	"modelrepo/internal/repository"
)

// HistoryResult describes an undone or redone operation
type HistoryResult struct {
	OperationID string
	Name        string
	Message     string
}

// UndoCommand reverts the most recent operation
type UndoCommand struct {
	repo *repository.Repository
}

// NewUndoCommand creates a new UndoCommand
func NewUndoCommand(repo *repository.Repository) *UndoCommand {
	return &UndoCommand{repo: repo}
}

// Execute runs the undo command
func (c *UndoCommand) Execute(ctx context.Context) (*HistoryResult, error) {
	op, err := c.repo.Undo()
	if err != nil {
		return nil, fmt.Errorf("failed to undo: %w", err)
	}
	if op == nil {
		return nil, application.ErrNothingToUndo
	}
	return &HistoryResult{
		OperationID: op.ID,
		Name:        op.Name,
		Message:     fmt.Sprintf("Undid %s", op.Name),
	}, nil
}

// RedoCommand re-applies the most recently undone operation
type RedoCommand struct {
	repo *repository.Repository
}

// NewRedoCommand creates a new RedoCommand
func NewRedoCommand(repo *repository.Repository) *RedoCommand {
	return &RedoCommand{repo: repo}
}

// Execute runs the redo command
func (c *RedoCommand) Execute(ctx context.Context) (*HistoryResult, error) {
	op, err := c.repo.Redo()
	if err != nil {
		return nil, fmt.Errorf("failed to redo: %w", err)
	}
	if op == nil {
		return nil, application.ErrNothingToRedo
	}
	return &HistoryResult{
		OperationID: op.ID,
		Name:        op.Name,
		Message:     fmt.Sprintf("Redid %s", op.Name),
	}, nil
}
