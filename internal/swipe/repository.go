package swipe

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the storage contract for swipes. Implementations
// must guarantee at most one row per (subject, candidate) pair: two
// racing writes for the same pair resolve to a single row.
type Repository interface {
	// Upsert writes the swipe, inserting a new row or overwriting the
	// existing row for the (subject, candidate) pair atomically.
	Upsert(ctx context.Context, s *Swipe) (*UpsertResult, error)

	// Latest returns the subject's most recent swipe, or ErrSwipeNotFound.
	Latest(ctx context.Context, subjectID string) (*Swipe, error)

	// Delete removes a swipe by ID. Returns ErrSwipeNotFound when absent.
	Delete(ctx context.Context, id string) error

	// CountSince counts the subject's swipes created at or after the given
	// time. The daily cap is derived from this, never from a cache, so it
	// survives server restarts.
	CountSince(ctx context.Context, subjectID string, since time.Time) (int, error)
}

// InMemoryRepository is an in-memory Repository implementation used in
// tests and development. Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu     sync.RWMutex
	swipes map[string]*Swipe // ID -> swipe
	pairs  map[string]string // "subject\x00candidate" -> ID
}

// NewInMemoryRepository creates an empty in-memory swipe repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		swipes: make(map[string]*Swipe),
		pairs:  make(map[string]string),
	}
}

// pairKey builds the unique pair key. A null byte separator avoids
// collisions between IDs containing the separator character.
func pairKey(subjectID, candidateID string) string {
	return subjectID + "\x00" + candidateID
}

// Upsert writes the swipe under the pair-uniqueness guarantee.
func (r *InMemoryRepository) Upsert(ctx context.Context, s *Swipe) (*UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(s.SubjectID, s.CandidateID)
	if existingID, ok := r.pairs[key]; ok {
		existing := r.swipes[existingID]
		existing.Direction = s.Direction
		existing.Reason = s.Reason
		existing.Score = s.Score
		copied := *existing
		return &UpsertResult{Inserted: false, Swipe: &copied}, nil
	}

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	copied := *s
	r.swipes[copied.ID] = &copied
	r.pairs[key] = copied.ID

	result := copied
	return &UpsertResult{Inserted: true, Swipe: &result}, nil
}

// Latest returns the subject's most recent swipe by creation time.
func (r *InMemoryRepository) Latest(ctx context.Context, subjectID string) (*Swipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *Swipe
	for _, s := range r.swipes {
		if s.SubjectID != subjectID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, ErrSwipeNotFound
	}
	copied := *latest
	return &copied, nil
}

// Delete removes a swipe by ID.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.swipes[id]
	if !ok {
		return ErrSwipeNotFound
	}
	delete(r.swipes, id)
	delete(r.pairs, pairKey(s.SubjectID, s.CandidateID))
	return nil
}

// CountSince counts the subject's swipes created at or after since.
func (r *InMemoryRepository) CountSince(ctx context.Context, subjectID string, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int
	for _, s := range r.swipes {
		if s.SubjectID == subjectID && !s.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}
