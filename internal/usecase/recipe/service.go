package recipe

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kitchenops/recipedex/internal/domain"
)

// Service handles recipe CRUD and keeps the search index in sync, one
// mutation at a time.
//
// Synchronization is synchronous and best-effort: the store write is
// authoritative and already committed by the time the index write is
// attempted. An index failure is never rolled back and never retried here;
// it is returned alongside the committed recipe, wrapping
// domain.ErrIndexWrite, and the full reindex repairs the drift.
type Service struct {
	store        Store
	index        Index
	defaultLimit int
	maxLimit     int
	indexTimeout time.Duration

	now   func() time.Time
	newID func() string
}

// New creates a recipe service.
func New(store Store, index Index) *Service {
	return &Service{
		store:        store,
		index:        index,
		defaultLimit: domain.DefaultLimit,
		maxLimit:     domain.MaxLimit,
		indexTimeout: 5 * time.Second,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// WithLimits configures pagination bounds.
func (s *Service) WithLimits(defaultLimit, maxLimit int) *Service {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	return s
}

// WithIndexTimeout bounds each index write.
func (s *Service) WithIndexTimeout(d time.Duration) *Service {
	if d > 0 {
		s.indexTimeout = d
	}
	return s
}

// Create validates the input, persists a new recipe with a server-assigned
// id and timestamps, then projects it into the search index.
//
// When the projection fails the recipe is still returned together with the
// index error: the catalog changed, search may lag.
func (s *Service) Create(ctx context.Context, in domain.RecipeInput) (*domain.Recipe, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.Normalize()

	now := s.now().UTC()
	rec := &domain.Recipe{
		ID:          s.newID(),
		Title:       in.Title,
		Ingredients: in.Ingredients,
		Steps:       in.Steps,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	return rec, s.project(ctx, rec)
}

// Get returns a recipe by id.
func (s *Service) Get(ctx context.Context, id string) (domain.Recipe, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("get recipe: %w", err)
	}
	return rec, nil
}

// List returns recipes newest first, with the limit clamped into the
// configured bounds.
func (s *Service) List(ctx context.Context, limit int) ([]domain.Recipe, error) {
	limit = domain.ClampLimit(limit, s.defaultLimit, s.maxLimit)

	recs, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recs, nil
}

// Update replaces title/ingredients/steps of an existing recipe, keeping
// id and createdAt and refreshing updatedAt, then reprojects it.
func (s *Service) Update(ctx context.Context, id string, in domain.RecipeInput) (*domain.Recipe, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.Normalize()

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	rec := &domain.Recipe{
		ID:          current.ID,
		Title:       in.Title,
		Ingredients: in.Ingredients,
		Steps:       in.Steps,
		CreatedAt:   current.CreatedAt,
		UpdatedAt:   s.now().UTC(),
	}

	if err := s.store.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	return rec, s.project(ctx, rec)
}

// Delete removes a recipe from the store, then removes its search
// document. A failed index removal is reported like a failed projection:
// the store delete stands.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.indexTimeout)
	defer cancel()

	if err := s.index.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove recipe %s from index: %w: %w", id, domain.ErrIndexWrite, err)
	}
	return nil
}

func (s *Service) project(ctx context.Context, rec *domain.Recipe) error {
	doc, err := domain.NewSearchDocument(rec)
	if err != nil {
		return fmt.Errorf("project recipe %s: %w: %w", rec.ID, domain.ErrIndexWrite, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.indexTimeout)
	defer cancel()

	if err := s.index.Write(ctx, doc); err != nil {
		return fmt.Errorf("project recipe %s: %w: %w", rec.ID, domain.ErrIndexWrite, err)
	}
	return nil
}
