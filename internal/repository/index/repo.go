package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/kitchenops/recipedex/internal/db"
	"github.com/kitchenops/recipedex/internal/domain"
)

// Search document hash fields. The double underscore marks internal fields
// that are not part of the FT schema.
const (
	FieldTitle          = "title"
	FieldIngredients    = "ingredients"
	FieldSteps          = "steps"
	FieldIngredientTags = "ingredient_tags"
	FieldCreatedAt      = "created_at"
	FieldUpdatedAt      = "updated_at"
	FieldPayload        = "__payload"
)

// Relevance weights: a title hit outranks an ingredient hit outranks a step
// hit, all else equal.
const (
	titleWeight       = 2.0
	ingredientsWeight = 1.5
)

// store is the consumer interface for the search index side (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo owns the search document keyspace and the FT index over it. Search
// documents live under their own prefix, separate from the record
// keyspace, so the projection can drift and be rebuilt without touching
// authoritative data.
type Repo struct {
	store  store
	prefix string
}

// New creates an index repository with the given key prefix.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// IndexName returns the FT index name.
func (r *Repo) IndexName() string {
	return r.prefix + "search:idx"
}

// EnsureIndex creates the FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	err := r.store.CreateIndex(ctx, r.definition())
	if err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Write replaces the search document for a recipe. Full replace per key;
// there is no partial field update.
func (r *Repo) Write(ctx context.Context, doc *domain.SearchDocument) error {
	key := r.key(doc.ID)
	if err := r.store.HSet(ctx, key, buildHashFields(doc)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// WriteAll writes search documents in one pipelined batch.
func (r *Repo) WriteAll(ctx context.Context, docs []*domain.SearchDocument) error {
	items := make([]db.HashSetItem, len(docs))
	for i, doc := range docs {
		items[i] = db.HashSetItem{Key: r.key(doc.ID), Fields: buildHashFields(doc)}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("bulk hset: %w", err)
	}
	return nil
}

// Remove deletes the search document for a recipe. Removing a missing
// document is not an error.
func (r *Repo) Remove(ctx context.Context, id string) error {
	key := r.key(id)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Purge drops the FT index and deletes every search document, preparing a
// full rebuild. A missing index is tolerated.
func (r *Repo) Purge(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.IndexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index: %w", err)
	}

	keys, err := r.store.Scan(ctx, r.prefix+"search:doc:*")
	if err != nil {
		return fmt.Errorf("scan search docs: %w", err)
	}
	for _, key := range keys {
		if err := r.store.Del(ctx, key); err != nil {
			return fmt.Errorf("del %s: %w", key, err)
		}
	}
	return nil
}

func (r *Repo) key(id string) string {
	return r.prefix + "search:doc:" + id
}

// definition is the FT schema for recipe search documents. TEXT weights
// implement the documented ranking: title 2.0, ingredients 1.5, steps 1.0.
func (r *Repo) definition() *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:        r.IndexName(),
		StorageType: db.StorageHash,
		Prefixes:    []string{r.prefix + "search:doc:"},
		Fields: []db.IndexField{
			{Name: FieldTitle, Type: db.IndexFieldText, TextWeight: titleWeight},
			{Name: FieldIngredients, Type: db.IndexFieldText, TextWeight: ingredientsWeight},
			{Name: FieldSteps, Type: db.IndexFieldText},
			{Name: FieldIngredientTags, Type: db.IndexFieldTag, TagSeparator: ","},
			{Name: FieldCreatedAt, Type: db.IndexFieldNumeric},
			{Name: FieldUpdatedAt, Type: db.IndexFieldNumeric},
		},
	}
}
