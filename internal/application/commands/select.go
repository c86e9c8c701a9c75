package commands

import (
	"context"

	"modelrepo/internal/application"
	"modelrepo/internal/domain"
	"modelrepo/internal/repository"
)

// SelectCommand evaluates a selector expression over the live elements
type SelectCommand struct {
	repo     *repository.Repository
	Selector string
}

// NewSelectCommand creates a new SelectCommand
func NewSelectCommand(repo *repository.Repository, selector string) *SelectCommand {
	return &SelectCommand{repo: repo, Selector: selector}
}

// Execute runs the select command
func (c *SelectCommand) Execute(ctx context.Context) ([]domain.SearchResult, error) {
	elems, err := c.repo.Select(c.Selector)
	if err != nil {
		return nil, &application.ValidationError{Field: "selector", Message: err.Error()}
	}
	out := make([]domain.SearchResult, 0, len(elems))
	for _, e := range elems {
		out = append(out, application.ToSearchResult(e))
	}
	return out, nil
}
