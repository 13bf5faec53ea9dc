package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewSearchDocument(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	rec := &Recipe{
		ID:          "rec-1",
		Title:       "Tomato Soup",
		Ingredients: []string{"Tomato", "  Basil ", "salt"},
		Steps:       []string{"chop tomatoes", "simmer"},
		CreatedAt:   created,
		UpdatedAt:   updated,
	}

	doc, err := NewSearchDocument(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.ID != "rec-1" {
		t.Errorf("id: got %q", doc.ID)
	}
	if doc.Title != "Tomato Soup" {
		t.Errorf("title: got %q", doc.Title)
	}
	if doc.Ingredients != "Tomato,   Basil , salt" {
		t.Errorf("ingredients text: got %q", doc.Ingredients)
	}
	if doc.Steps != "chop tomatoes simmer" {
		t.Errorf("steps text: got %q", doc.Steps)
	}
	if doc.CreatedAt != created.Unix() {
		t.Errorf("createdAt: got %d, want %d", doc.CreatedAt, created.Unix())
	}
	if doc.UpdatedAt != updated.Unix() {
		t.Errorf("updatedAt: got %d, want %d", doc.UpdatedAt, updated.Unix())
	}

	wantTags := []string{"tomato", "basil", "salt"}
	if len(doc.IngredientTags) != len(wantTags) {
		t.Fatalf("tags: got %v, want %v", doc.IngredientTags, wantTags)
	}
	for i, tag := range doc.IngredientTags {
		if tag != wantTags[i] {
			t.Errorf("tag %d: got %q, want %q", i, tag, wantTags[i])
		}
	}
}

func TestNewSearchDocumentSkipsBlankTags(t *testing.T) {
	rec := &Recipe{
		ID:          "rec-2",
		Title:       "Odd",
		Ingredients: []string{"  ", "", "flour"},
	}

	doc, err := NewSearchDocument(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.IngredientTags) != 1 || doc.IngredientTags[0] != "flour" {
		t.Errorf("expected single tag 'flour', got %v", doc.IngredientTags)
	}
}

func TestNewSearchDocumentTagCommas(t *testing.T) {
	rec := &Recipe{
		ID:          "rec-4",
		Title:       "Fries",
		Ingredients: []string{"salt, to taste", "potato"},
	}

	doc, err := NewSearchDocument(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A comma inside one ingredient must not split it into two tags.
	if len(doc.IngredientTags) != 2 {
		t.Fatalf("tags: got %v, want 2 entries", doc.IngredientTags)
	}
	if doc.IngredientTags[0] != "salt to taste" || doc.IngredientTags[1] != "potato" {
		t.Errorf("tags: got %v", doc.IngredientTags)
	}
}

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tomato", "tomato"},
		{"  Basil ", "basil"},
		{"salt, to taste", "salt to taste"},
		{"olive  oil", "olive oil"},
		{",,", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTag(tt.in); got != tt.want {
			t.Errorf("NormalizeTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewSearchDocumentPayloadRoundTrip(t *testing.T) {
	rec := &Recipe{
		ID:          "rec-3",
		Title:       "Bread",
		Ingredients: []string{"flour", "water", "yeast"},
		Steps:       []string{"mix", "rise", "bake"},
		CreatedAt:   time.Unix(1700000000, 0).UTC(),
		UpdatedAt:   time.Unix(1700000100, 0).UTC(),
	}

	doc, err := NewSearchDocument(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var restored Recipe
	if err := json.Unmarshal(doc.Payload, &restored); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if restored.ID != rec.ID || restored.Title != rec.Title {
		t.Errorf("restored recipe differs: %+v", restored)
	}
	if len(restored.Steps) != 3 || restored.Steps[2] != "bake" {
		t.Errorf("restored steps differ: %v", restored.Steps)
	}
	if !restored.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("restored createdAt differs: %v", restored.CreatedAt)
	}
}

func TestRecipeMatchJSONShape(t *testing.T) {
	m := RecipeMatch{
		Recipe: Recipe{ID: "rec-4", Title: "Salad"},
		Score:  2.5,
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if flat["id"] != "rec-4" {
		t.Errorf("expected flattened recipe fields, got %v", flat)
	}
	if flat["_score"] != 2.5 {
		t.Errorf("expected _score 2.5, got %v", flat["_score"])
	}
}
