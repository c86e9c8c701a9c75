package commands

import (
	"context"
	"sort"
	"strings"

	"modelrepo/internal/application"
	"modelrepo/internal/domain"
	"modelrepo/internal/repository"
)

// SearchResult wraps domain.SearchResult with a relevance score
type SearchResult struct {
	domain.SearchResult
	Score int
}

// SearchCommand searches element names and documentation with fuzzy matching
type SearchCommand struct {
	repo       *repository.Repository
	Query      string
	TypeFilter string
}

// NewSearchCommand creates a new SearchCommand. An empty typeFilter matches
// every type.
func NewSearchCommand(repo *repository.Repository, query, typeFilter string) *SearchCommand {
	return &SearchCommand{
		repo:       repo,
		Query:      query,
		TypeFilter: typeFilter,
	}
}

// Execute runs the search command and returns scored, sorted results
func (c *SearchCommand) Execute(ctx context.Context) ([]SearchResult, error) {
	query := strings.TrimSpace(c.Query)
	if len(query) < 2 {
		return nil, nil
	}
	if c.TypeFilter != "" {
		if _, ok := c.repo.Registry().Lookup(c.TypeFilter); !ok {
			return nil, &application.ValidationError{Field: "type", Message: "unknown type: " + c.TypeFilter}
		}
	}

	var results []domain.SearchResult
	for _, e := range c.repo.All() {
		if c.TypeFilter != "" && !c.repo.Registry().IsKindOf(e.TypeName(), c.TypeFilter) {
			continue
		}
		if _, ok := e.(domain.Named); !ok {
			continue
		}
		results = append(results, application.ToSearchResult(e))
	}
	domain.SortByName(results)
	return FuzzySort(results, query), nil
}

// FuzzyScore calculates a relevance score for how well target matches query
func FuzzyScore(target, query string) int {
	target = strings.ToLower(target)
	query = strings.ToLower(query)

	if len(query) == 0 {
		return 0
	}

	// Check for exact substring match first (highest priority)
	if strings.Contains(target, query) {
		score := 100
		if strings.HasPrefix(target, query) {
			score += 50
		}
		return score
	}

	// Fuzzy match: check if chars appear in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -1

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] != query[queryIdx] {
			continue
		}
		if prevMatchIdx == i-1 {
			score += 10 // consecutive chars
		}
		if i == 0 {
			score += 15
		}
		if i > 0 && isSeparator(target[i-1]) {
			score += 10
		}
		score++
		prevMatchIdx = i
		queryIdx++
	}

	if queryIdx == len(query) {
		return score
	}
	return 0
}

// isSeparator reports word boundaries in names, camelCase aside.
func isSeparator(c byte) bool {
	return c == ' ' || c == '.' || c == '-' || c == '_'
}

// FuzzySort sorts search results by relevance to the query. Ties keep their
// input order.
func FuzzySort(results []domain.SearchResult, query string) []SearchResult {
	scored := make([]SearchResult, 0, len(results))

	for _, r := range results {
		best := max(
			FuzzyScore(r.ID, query),
			FuzzyScore(r.Name, query),
			FuzzyScore(r.MatchedText, query),
		)
		if best > 0 {
			scored = append(scored, SearchResult{
				SearchResult: r,
				Score:        best,
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}
