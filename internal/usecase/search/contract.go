package search

import (
	"context"

	"github.com/kitchenops/recipedex/internal/domain"
)

// Repository executes a built query against the search index, returning
// matches and the total count independent of the limit.
type Repository interface {
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.RecipeMatch, int, error)
}
