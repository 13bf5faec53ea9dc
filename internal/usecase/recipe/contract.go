package recipe

import (
	"context"

	"github.com/kitchenops/recipedex/internal/domain"
)

// Store is the authoritative record store contract.
type Store interface {
	Get(ctx context.Context, id string) (domain.Recipe, error)
	List(ctx context.Context, limit int) ([]domain.Recipe, error)
	Upsert(ctx context.Context, rec *domain.Recipe) error
	Delete(ctx context.Context, id string) error
}

// Index receives search document projections after store mutations.
type Index interface {
	Write(ctx context.Context, doc *domain.SearchDocument) error
	Remove(ctx context.Context, id string) error
}
