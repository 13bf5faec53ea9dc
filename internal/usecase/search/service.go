package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/kitchenops/recipedex/internal/domain"
)

// Service builds and executes ranked recipe searches.
//
// Ranking: free text matches title, ingredients, and steps with weights
// 2.0 / 1.5 / 1.0, so a title-only match still scores above zero and
// matching more fields scores higher, all else equal. The ingredient
// filter is match-ALL: every comma-separated token must be present in a
// recipe's ingredient set.
type Service struct {
	repo         Repository
	defaultLimit int
	maxLimit     int
	timeout      time.Duration
}

// New creates a search service.
func New(repo Repository) *Service {
	return &Service{
		repo:         repo,
		defaultLimit: domain.DefaultLimit,
		maxLimit:     domain.MaxLimit,
		timeout:      5 * time.Second,
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

// WithTimeout bounds each query against the index.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Search runs a free-text query with an optional ingredient filter.
// A query error is surfaced, never degraded to an empty result; a timeout
// maps to domain.ErrIndexUnavailable.
func (s *Service) Search(ctx context.Context, q, ingredients string, limit int) (*domain.SearchPage, error) {
	query := domain.SearchQuery{
		Text:           strings.TrimSpace(q),
		IngredientTags: parseIngredientFilter(ingredients),
		Limit:          domain.ClampLimit(limit, s.defaultLimit, s.maxLimit),
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	matches, total, err := s.repo.Search(ctx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search recipes: %w: %w", domain.ErrIndexUnavailable, err)
		}
		return nil, fmt.Errorf("search recipes: %w: %w", domain.ErrIndexQuery, err)
	}

	sortMatches(matches)
	if len(matches) > query.Limit {
		matches = matches[:query.Limit]
	}
	if matches == nil {
		matches = []domain.RecipeMatch{}
	}

	return &domain.SearchPage{
		Items:             matches,
		Total:             total,
		Query:             q,
		IngredientsFilter: ingredients,
	}, nil
}

// parseIngredientFilter splits a comma-separated filter into unique tokens,
// normalized the same way document tags are so they compare equal. An empty
// filter yields no tokens.
func parseIngredientFilter(csv string) []string {
	tokens := lo.FilterMap(strings.Split(csv, ","), func(tok string, _ int) (string, bool) {
		tok = domain.NormalizeTag(tok)
		return tok, tok != ""
	})
	return lo.Uniq(tokens)
}

// sortMatches orders by score descending with a deterministic tie-break
// (createdAt descending, then id ascending) so repeated identical queries
// against an unchanged index return identical order.
func sortMatches(matches []domain.RecipeMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
}
