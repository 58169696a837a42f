package weights

import (
	"context"
	"errors"
	"sync"
)

// ErrNoStoredWeights indicates the backing store has no weights row yet.
var ErrNoStoredWeights = errors.New("no stored weights")

// Store is the authoritative backing store for scoring weights. The
// cached read path treats any Load failure as a degraded condition and
// falls back to defaults; Save failures surface to the admin caller.
type Store interface {
	// Load returns the currently persisted weights, or ErrNoStoredWeights
	// when none have been saved.
	Load(ctx context.Context) (Weights, error)

	// Save persists new weights. Callers must validate first.
	Save(ctx context.Context, w Weights) error
}

// InMemoryStore is an in-memory Store implementation used in tests and
// single-process deployments. Thread-safe via RWMutex.
type InMemoryStore struct {
	mu      sync.RWMutex
	current *Weights
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Load returns the stored weights or ErrNoStoredWeights.
func (s *InMemoryStore) Load(ctx context.Context) (Weights, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Weights{}, ErrNoStoredWeights
	}
	return *s.current, nil
}

// Save stores a copy of the weights.
func (s *InMemoryStore) Save(ctx context.Context, w Weights) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := w
	s.current = &copied
	return nil
}
