package health

import (
	"context"
	"fmt"
)

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service reports readiness of the backing store.
type Service struct {
	store Pinger
}

// New creates a health service.
func New(store Pinger) *Service {
	return &Service{store: store}
}

// Check pings the store.
func (s *Service) Check(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store health check: %w", err)
	}
	return nil
}
