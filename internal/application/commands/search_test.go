package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelrepo/internal/application"
	"modelrepo/internal/domain"
)

func TestFuzzyScore(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		query     string
		wantScore int
		wantMin   int // use this for relative comparisons
	}{
		{
			name:      "exact match",
			target:    "Order",
			query:     "Order",
			wantScore: 150, // 100 for contains + 50 for prefix
		},
		{
			name:      "prefix match",
			target:    "OrderLine",
			query:     "order",
			wantScore: 150,
		},
		{
			name:      "substring match",
			target:    "SpecialOrder",
			query:     "Order",
			wantScore: 100,
		},
		{
			name:    "fuzzy match",
			target:  "order_line",
			query:   "ordl",
			wantMin: 30,
		},
		{
			name:      "no match",
			target:    "Order",
			query:     "xyz",
			wantScore: 0,
		},
		{
			name:      "empty query",
			target:    "Order",
			query:     "",
			wantScore: 0,
		},
		{
			name:    "case insensitive",
			target:  "ORDER",
			query:   "order",
			wantMin: 100,
		},
		{
			name:    "ID match",
			target:  "0f8e2a1c-77b4",
			query:   "2a1c",
			wantMin: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := FuzzyScore(tt.target, tt.query)

			if tt.wantScore > 0 {
				if score != tt.wantScore {
					t.Errorf("expected score %d, got %d", tt.wantScore, score)
				}
			} else if tt.wantMin > 0 {
				if score < tt.wantMin {
					t.Errorf("expected score >= %d, got %d", tt.wantMin, score)
				}
			} else {
				if score != 0 {
					t.Errorf("expected score 0, got %d", score)
				}
			}
		})
	}
}

func TestFuzzyScore_Ordering(t *testing.T) {
	query := "order"

	exactScore := FuzzyScore("order", query)
	prefixScore := FuzzyScore("order line", query)
	containsScore := FuzzyScore("purchase order", query)
	fuzzyScore := FuzzyScore("o.r.d.e.r", query)

	if exactScore < prefixScore {
		t.Errorf("exact match should score >= prefix: %d < %d", exactScore, prefixScore)
	}
	if prefixScore < containsScore {
		t.Errorf("prefix match should score >= contains: %d < %d", prefixScore, containsScore)
	}
	if containsScore <= fuzzyScore {
		t.Errorf("contains match should score higher than fuzzy: %d <= %d", containsScore, fuzzyScore)
	}
}

func TestFuzzySort(t *testing.T) {
	results := []domain.SearchResult{
		{ID: "c1", Name: "Invoice", MatchedText: "nothing"},
		{ID: "c2", Name: "OrderLine", MatchedText: "order"},
		{ID: "c3", Name: "Customer", MatchedText: "places orders"},
		{ID: "c4", Name: "SpecialOrder", MatchedText: ""},
	}

	sorted := FuzzySort(results, "order")
	require.Len(t, sorted, 3)
	assert.Equal(t, "c2", sorted[0].ID)
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Score > sorted[i-1].Score {
			t.Errorf("results not sorted by score: %d > %d at index %d",
				sorted[i].Score, sorted[i-1].Score, i)
		}
	}
}

func TestSearchCommand(t *testing.T) {
	repo := shop(t)
	ctx := context.Background()

	results, err := NewSearchCommand(repo, "ord", "").Execute(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "order", results[0].ID)
	assert.Equal(t, "Shop/Domain/Order", results[0].Path)

	results, err = NewSearchCommand(repo, "things", "").Execute(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "customer", results[0].ID, "documentation is searched")

	results, err = NewSearchCommand(repo, "bill", domain.TypeClass).Execute(ctx)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = NewSearchCommand(repo, "bill", domain.TypePackage).Execute(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "billing", results[0].ID)

	results, err = NewSearchCommand(repo, "o", "").Execute(ctx)
	require.NoError(t, err)
	assert.Nil(t, results, "queries shorter than two characters return nothing")

	_, err = NewSearchCommand(repo, "order", "Widget").Execute(ctx)
	var ve *application.ValidationError
	assert.ErrorAs(t, err, &ve)
}
