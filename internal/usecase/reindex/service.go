// Package reindex rebuilds the entire search index from the record store,
// repairing whatever drift best-effort projection has accumulated.
package reindex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kitchenops/recipedex/internal/domain"
)

// Store reads the full record set for the rebuild.
type Store interface {
	ListAll(ctx context.Context) ([]domain.Recipe, error)
}

// Index is the rebuild target.
type Index interface {
	Purge(ctx context.Context) error
	EnsureIndex(ctx context.Context) error
	WriteAll(ctx context.Context, docs []*domain.SearchDocument) error
}

// Service performs the full discard-and-rebuild. At most one rebuild runs
// at a time; a concurrent request is rejected with
// domain.ErrReindexInProgress rather than queued.
//
// The rebuild is not atomic: a failure mid-rebuild leaves the index
// partially rewritten. Reads stay available throughout and may observe
// that partial state; rerunning the rebuild repairs it.
type Service struct {
	store   Store
	index   Index
	timeout time.Duration
	mu      sync.Mutex
}

// New creates a reindex service.
func New(store Store, index Index) *Service {
	return &Service{store: store, index: index, timeout: 60 * time.Second}
}

// WithTimeout bounds the whole rebuild.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// ReindexAll discards the index content and writes a fresh search document
// for every record. Returns the number of documents indexed. Idempotent on
// an unchanged store.
func (s *Service) ReindexAll(ctx context.Context) (int, error) {
	if !s.mu.TryLock() {
		return 0, domain.ErrReindexInProgress
	}
	defer s.mu.Unlock()

	recs, err := s.store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("read records: %w", err)
	}

	docs := make([]*domain.SearchDocument, len(recs))
	for i := range recs {
		doc, err := domain.NewSearchDocument(&recs[i])
		if err != nil {
			return 0, fmt.Errorf("project recipe %s: %w", recs[i].ID, err)
		}
		docs[i] = doc
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.index.Purge(ctx); err != nil {
		return 0, indexErr("purge index", err)
	}
	if err := s.index.EnsureIndex(ctx); err != nil {
		return 0, indexErr("recreate index", err)
	}
	if err := s.index.WriteAll(ctx, docs); err != nil {
		return 0, indexErr("rebuild index", err)
	}

	return len(docs), nil
}

func indexErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: timed out: %w: %w", op, domain.ErrIndexUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrIndexUnavailable, err)
}
