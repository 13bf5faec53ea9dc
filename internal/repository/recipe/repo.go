package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/kitchenops/recipedex/internal/db"
	"github.com/kitchenops/recipedex/internal/domain"
)

// store is the consumer interface for catalog records (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string, path string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo is the authoritative record store for recipes, backed by RedisJSON
// documents. It never touches the search index: listing must keep working
// while the index is broken, since the reindex repair path reads from here.
type Repo struct {
	store  store
	prefix string
}

// New creates a recipe record store with the given key prefix.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// Upsert writes the full recipe document. The caller assigns id and
// timestamps; this is a plain replace per key.
func (r *Repo) Upsert(ctx context.Context, rec *domain.Recipe) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal recipe %s: %w", rec.ID, err)
	}

	key := r.key(rec.ID)
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w: %w", key, domain.ErrStore, err)
	}
	return nil
}

// Get returns a recipe by id.
func (r *Repo) Get(ctx context.Context, id string) (domain.Recipe, error) {
	key := r.key(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Recipe{}, domain.ErrNotFound
		}
		return domain.Recipe{}, fmt.Errorf("json.get %s: %w: %w", key, domain.ErrStore, err)
	}
	return parseDocument(raw)
}

// Delete removes a recipe by id.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.key(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w: %w", key, domain.ErrStore, err)
	}
	if !exists {
		return domain.ErrNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w: %w", key, domain.ErrStore, err)
	}
	return nil
}

// List returns up to limit recipes, newest first. The caller resolves the
// limit; values below one return nothing.
func (r *Repo) List(ctx context.Context, limit int) ([]domain.Recipe, error) {
	recs, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// ListAll returns every recipe ordered by createdAt descending, id
// ascending on ties. Used by listing and the full reindex.
func (r *Repo) ListAll(ctx context.Context) ([]domain.Recipe, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"recipe:*")
	if err != nil {
		return nil, fmt.Errorf("scan recipes: %w: %w", domain.ErrStore, err)
	}
	if len(keys) == 0 {
		return []domain.Recipe{}, nil
	}

	docs, err := r.store.JSONGetMulti(ctx, keys, "$")
	if err != nil {
		return nil, fmt.Errorf("fetch recipes: %w: %w", domain.ErrStore, err)
	}

	recs := make([]domain.Recipe, 0, len(docs))
	for i, raw := range docs {
		if raw == nil {
			// Deleted between SCAN and fetch.
			continue
		}
		rec, err := parseDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", keys[i], err)
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})

	return recs, nil
}

func (r *Repo) key(id string) string {
	return r.prefix + "recipe:" + id
}

// parseDocument unwraps a JSONPath "$" reply (a one-element array) into a
// recipe.
func parseDocument(raw []byte) (domain.Recipe, error) {
	var docs []domain.Recipe
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domain.Recipe{}, fmt.Errorf("unmarshal recipe: %w", err)
	}
	if len(docs) == 0 {
		return domain.Recipe{}, domain.ErrNotFound
	}
	return docs[0], nil
}
