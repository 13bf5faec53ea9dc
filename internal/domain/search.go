package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SearchDocument is the index-resident projection of a Recipe. It has no
// independent lifecycle: it is created, replaced, or deleted strictly as a
// consequence of record mutations or a full reindex.
type SearchDocument struct {
	ID          string
	Title       string
	Ingredients string // ", "-joined for text matching
	Steps       string // " "-joined for text matching
	// IngredientTags holds normalized ingredient tokens (see NormalizeTag)
	// for exact filter matching.
	IngredientTags []string
	CreatedAt      int64 // unix seconds
	UpdatedAt      int64
	// Payload is the full recipe JSON, stored unindexed so search hits can
	// be returned without a second round-trip to the record store.
	Payload []byte
}

// NewSearchDocument projects a Recipe into its search document.
func NewSearchDocument(r *Recipe) (*SearchDocument, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal recipe %s: %w", r.ID, err)
	}

	tags := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if tag := NormalizeTag(ing); tag != "" {
			tags = append(tags, tag)
		}
	}

	return &SearchDocument{
		ID:             r.ID,
		Title:          r.Title,
		Ingredients:    strings.Join(r.Ingredients, ", "),
		Steps:          strings.Join(r.Steps, " "),
		IngredientTags: tags,
		CreatedAt:      r.CreatedAt.Unix(),
		UpdatedAt:      r.UpdatedAt.Unix(),
		Payload:        payload,
	}, nil
}

// NormalizeTag canonicalizes an ingredient for tag matching: lowercased,
// commas replaced with spaces, runs of whitespace collapsed. Commas must
// not survive because the tag field uses them as its separator, both in
// stored documents and in filter syntax.
func NormalizeTag(ingredient string) string {
	clean := strings.ReplaceAll(strings.ToLower(ingredient), ",", " ")
	return strings.Join(strings.Fields(clean), " ")
}

// SearchQuery is a parsed, validated search request.
type SearchQuery struct {
	// Text is the free-text component; empty matches all documents.
	Text string
	// IngredientTags is the conjunctive ingredient filter; a document must
	// carry every tag to be included. Empty means no filter.
	IngredientTags []string
	Limit          int
}

// RecipeMatch pairs a recipe with its relevance score.
type RecipeMatch struct {
	Recipe
	Score float64 `json:"_score"`
}

// SearchPage is the shaped result of a search: ranked matches truncated to
// the resolved limit, the total match count independent of that limit, and
// the echoed request parameters.
type SearchPage struct {
	Items             []RecipeMatch `json:"items"`
	Total             int           `json:"total"`
	Query             string        `json:"query"`
	IngredientsFilter string        `json:"ingredients_filter"`
}
