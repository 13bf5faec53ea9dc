package chi

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kitchenops/recipedex/internal/domain"
	healthuc "github.com/kitchenops/recipedex/internal/usecase/health"
	recipeuc "github.com/kitchenops/recipedex/internal/usecase/recipe"
	reindexuc "github.com/kitchenops/recipedex/internal/usecase/reindex"
	searchuc "github.com/kitchenops/recipedex/internal/usecase/search"
)

// --- Mocks behind the usecase services ---

type mockRecipeStore struct {
	upsertFn func(ctx context.Context, rec *domain.Recipe) error
	getFn    func(ctx context.Context, id string) (domain.Recipe, error)
	listFn   func(ctx context.Context, limit int) ([]domain.Recipe, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockRecipeStore) Upsert(ctx context.Context, rec *domain.Recipe) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, rec)
	}
	return nil
}

func (m *mockRecipeStore) Get(ctx context.Context, id string) (domain.Recipe, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Recipe{ID: id}, nil
}

func (m *mockRecipeStore) List(ctx context.Context, limit int) ([]domain.Recipe, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return []domain.Recipe{}, nil
}

func (m *mockRecipeStore) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockRecipeStore) ListAll(ctx context.Context) ([]domain.Recipe, error) {
	if m.listFn != nil {
		return m.listFn(ctx, 0)
	}
	return []domain.Recipe{}, nil
}

type mockIndex struct {
	writeFn    func(ctx context.Context, doc *domain.SearchDocument) error
	removeFn   func(ctx context.Context, id string) error
	purgeFn    func(ctx context.Context) error
	ensureFn   func(ctx context.Context) error
	writeAllFn func(ctx context.Context, docs []*domain.SearchDocument) error
}

func (m *mockIndex) Write(ctx context.Context, doc *domain.SearchDocument) error {
	if m.writeFn != nil {
		return m.writeFn(ctx, doc)
	}
	return nil
}

func (m *mockIndex) Remove(ctx context.Context, id string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, id)
	}
	return nil
}

func (m *mockIndex) Purge(ctx context.Context) error {
	if m.purgeFn != nil {
		return m.purgeFn(ctx)
	}
	return nil
}

func (m *mockIndex) EnsureIndex(ctx context.Context) error {
	if m.ensureFn != nil {
		return m.ensureFn(ctx)
	}
	return nil
}

func (m *mockIndex) WriteAll(ctx context.Context, docs []*domain.SearchDocument) error {
	if m.writeAllFn != nil {
		return m.writeAllFn(ctx, docs)
	}
	return nil
}

type mockSearchRepo struct {
	searchFn func(ctx context.Context, q domain.SearchQuery) ([]domain.RecipeMatch, int, error)
}

func (m *mockSearchRepo) Search(ctx context.Context, q domain.SearchQuery) ([]domain.RecipeMatch, int, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return []domain.RecipeMatch{}, 0, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

// testBackend bundles the mocks behind a fully wired server.
type testBackend struct {
	store  *mockRecipeStore
	index  *mockIndex
	search *mockSearchRepo
	pinger *mockPinger
}

func newTestServer(t *testing.T) (*chi.Mux, *testBackend) {
	t.Helper()

	b := &testBackend{
		store:  &mockRecipeStore{},
		index:  &mockIndex{},
		search: &mockSearchRepo{},
		pinger: &mockPinger{},
	}

	srv := NewServer(
		recipeuc.New(b.store, b.index),
		searchuc.New(b.search),
		reindexuc.New(b.store, b.index),
		healthuc.New(b.pinger),
		zap.NewNop(),
	)

	r := chi.NewRouter()
	srv.Mount(r, BasicAuthMiddleware(nil))
	return r, b
}

func testRecipe(id string) domain.Recipe {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.Recipe{
		ID:          id,
		Title:       "Recipe " + id,
		Ingredients: []string{"flour"},
		Steps:       []string{"mix"},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}
