package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kitchenops/recipedex/internal/db"
	"github.com/kitchenops/recipedex/internal/domain"
	"github.com/kitchenops/recipedex/internal/repository/index"
)

// store is the consumer interface for search execution (ISP).
type store interface {
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo executes built queries against the FT index and parses hits back
// into recipes with scores.
type Repo struct {
	store  store
	prefix string
}

// New creates a search repository with the given key prefix.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// Search runs the query and returns the matches plus the total match count
// independent of the limit.
func (r *Repo) Search(ctx context.Context, q domain.SearchQuery) ([]domain.RecipeMatch, int, error) {
	tq := &db.TextQuery{
		IndexName:    r.prefix + "search:idx",
		Text:         q.Text,
		TagField:     index.FieldIngredientTags,
		Tags:         q.IngredientTags,
		Limit:        q.Limit,
		ReturnFields: []string{index.FieldPayload},
	}

	sr, err := r.store.SearchText(ctx, tq)
	if err != nil {
		return nil, 0, fmt.Errorf("search text: %w", err)
	}

	matches := make([]domain.RecipeMatch, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		match, err := parseEntry(entry)
		if err != nil {
			return nil, 0, fmt.Errorf("parse hit %s: %w", entry.Key, err)
		}
		matches = append(matches, match)
	}

	return matches, sr.Total, nil
}

// parseEntry reconstructs a recipe from the stored payload field and
// attaches the engine score.
func parseEntry(entry db.SearchEntry) (domain.RecipeMatch, error) {
	payload, ok := entry.Fields[index.FieldPayload]
	if !ok || payload == "" {
		return domain.RecipeMatch{}, fmt.Errorf("missing payload field")
	}

	var rec domain.Recipe
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return domain.RecipeMatch{}, fmt.Errorf("unmarshal payload: %w", err)
	}

	return domain.RecipeMatch{Recipe: rec, Score: entry.Score}, nil
}
