package domain

import (
	"fmt"
	"strings"
	"time"
)

// Pagination bounds for catalog listing and search.
const (
	MinLimit     = 1
	MaxLimit     = 200
	DefaultLimit = 50
)

// LimitUnset marks a request that carried no limit parameter, as opposed
// to an explicit out-of-range value, which gets clamped.
const LimitUnset = -1

// Recipe is the authoritative catalog entity. ID and timestamps are
// server-assigned; ingredient and step order is preserved as submitted.
type Recipe struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Ingredients []string  `json:"ingredients"`
	Steps       []string  `json:"steps"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RecipeInput carries the client-supplied fields of a create or replace
// request. It never carries an id or timestamps.
type RecipeInput struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}

// Validate rejects inputs without a non-empty title.
func (in *RecipeInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: 'title' is required and cannot be empty", ErrValidation)
	}
	return nil
}

// Normalize trims the title and replaces nil sequences with empty ones so
// stored documents always carry arrays.
func (in *RecipeInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	if in.Ingredients == nil {
		in.Ingredients = []string{}
	}
	if in.Steps == nil {
		in.Steps = []string{}
	}
}

// ClampLimit resolves a requested page size: LimitUnset falls back to
// fallback, out-of-range values (including an explicit zero) are clamped
// into [MinLimit, maxLimit], never rejected.
func ClampLimit(limit, fallback, maxLimit int) int {
	if limit == LimitUnset {
		return fallback
	}
	if limit < MinLimit {
		return MinLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
