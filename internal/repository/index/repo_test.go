package index

import (
	"context"
	"fmt"
	"testing"

	"github.com/kitchenops/recipedex/internal/db"
	"github.com/kitchenops/recipedex/internal/domain"
)

func TestEnsureIndexDefinition(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		got = def
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected CreateIndex to be called")
	}
	if got.Name != "recipedex:search:idx" {
		t.Errorf("index name: got %q", got.Name)
	}
	if got.StorageType != db.StorageHash {
		t.Errorf("storage type: got %q", got.StorageType)
	}
	if len(got.Prefixes) != 1 || got.Prefixes[0] != "recipedex:search:doc:" {
		t.Errorf("prefixes: got %v", got.Prefixes)
	}

	weights := map[string]float64{}
	types := map[string]db.IndexFieldType{}
	for _, f := range got.Fields {
		weights[f.Name] = f.TextWeight
		types[f.Name] = f.Type
	}
	if weights[FieldTitle] != 2.0 {
		t.Errorf("title weight: got %v", weights[FieldTitle])
	}
	if weights[FieldIngredients] != 1.5 {
		t.Errorf("ingredients weight: got %v", weights[FieldIngredients])
	}
	if types[FieldSteps] != db.IndexFieldText {
		t.Errorf("steps type: got %q", types[FieldSteps])
	}
	if types[FieldIngredientTags] != db.IndexFieldTag {
		t.Errorf("ingredient_tags type: got %q", types[FieldIngredientTags])
	}
	if types[FieldCreatedAt] != db.IndexFieldNumeric {
		t.Errorf("created_at type: got %q", types[FieldCreatedAt])
	}
}

func TestEnsureIndexAlreadyExists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error {
		return db.ErrIndexExists
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Errorf("existing index must be tolerated, got %v", err)
	}
}

func TestEnsureIndexError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error {
		return fmt.Errorf("connection refused")
	}

	if err := repo.EnsureIndex(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestWrite(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotKey string
	var gotFields map[string]string
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		gotKey, gotFields = key, fields
		return nil
	}

	if err := repo.Write(context.Background(), testDoc(t, "rec-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotKey != "recipedex:search:doc:rec-1" {
		t.Errorf("key: got %q", gotKey)
	}
	if gotFields[FieldTitle] != "Tomato Soup" {
		t.Errorf("title field: got %q", gotFields[FieldTitle])
	}
	if gotFields[FieldIngredientTags] != "tomato,basil" {
		t.Errorf("tags field: got %q", gotFields[FieldIngredientTags])
	}
	if gotFields[FieldCreatedAt] != "1700000000" {
		t.Errorf("created_at field: got %q", gotFields[FieldCreatedAt])
	}
	if gotFields[FieldPayload] != `{"id":"rec-1"}` {
		t.Errorf("payload field: got %q", gotFields[FieldPayload])
	}
}

func TestWriteAll(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		got = items
		return nil
	}

	docs := []*domain.SearchDocument{testDoc(t, "rec-1"), testDoc(t, "rec-2")}
	if err := repo.WriteAll(context.Background(), docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[0].Key != "recipedex:search:doc:rec-1" || got[1].Key != "recipedex:search:doc:rec-2" {
		t.Errorf("keys: got %q, %q", got[0].Key, got[1].Key)
	}
	if got[1].Fields[FieldPayload] != `{"id":"rec-2"}` {
		t.Errorf("payload: got %q", got[1].Fields[FieldPayload])
	}
}

func TestRemove(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotKey string
	ms.delFn = func(_ context.Context, key string) error {
		gotKey = key
		return nil
	}

	if err := repo.Remove(context.Background(), "rec-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "recipedex:search:doc:rec-1" {
		t.Errorf("key: got %q", gotKey)
	}
}

func TestPurge(t *testing.T) {
	repo, ms := newTestRepo(t)

	var dropped string
	ms.dropIndexFn = func(_ context.Context, name string) error {
		dropped = name
		return nil
	}
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "recipedex:search:doc:*" {
			t.Errorf("scan pattern: got %q", pattern)
		}
		return []string{"recipedex:search:doc:a", "recipedex:search:doc:b"}, nil
	}

	var deleted []string
	ms.delFn = func(_ context.Context, key string) error {
		deleted = append(deleted, key)
		return nil
	}

	if err := repo.Purge(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dropped != "recipedex:search:idx" {
		t.Errorf("dropped index: got %q", dropped)
	}
	if len(deleted) != 2 {
		t.Errorf("expected 2 deletions, got %v", deleted)
	}
}

func TestPurgeMissingIndex(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.dropIndexFn = func(context.Context, string) error {
		return db.ErrIndexNotFound
	}

	if err := repo.Purge(context.Background()); err != nil {
		t.Errorf("missing index must be tolerated, got %v", err)
	}
}

func TestPurgeDropError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.dropIndexFn = func(context.Context, string) error {
		return fmt.Errorf("connection refused")
	}
	ms.scanFn = func(context.Context, string) ([]string, error) {
		t.Error("Scan must not run when the drop fails")
		return nil, nil
	}

	if err := repo.Purge(context.Background()); err == nil {
		t.Error("expected error")
	}
}
