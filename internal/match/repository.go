package match

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the storage contract for matches. Implementations
// must guarantee at most one match per (volunteer, vacancy) pair and must
// commit the accept-plus-conversation write atomically.
type Repository interface {
	// GetByPair returns the match for the pair, or ErrMatchNotFound.
	GetByPair(ctx context.Context, volunteerID, vacancyID string) (*Match, error)

	// EnsurePending creates a PENDING match for the pair, or returns the
	// existing match unchanged whatever its state. The boolean reports
	// whether a new match was created.
	EnsurePending(ctx context.Context, m *Match) (*Match, bool, error)

	// Accept transitions PENDING -> ACCEPTED, stamping StartedAt exactly
	// once and creating the conversation in the same transaction. Returns
	// ErrTerminalState when the match is not PENDING.
	Accept(ctx context.Context, matchID string) (*Match, *Conversation, error)

	// Reject transitions PENDING -> REJECTED. Returns ErrTerminalState
	// when the match is not PENDING.
	Reject(ctx context.Context, matchID string) (*Match, error)

	// Complete transitions ACCEPTED -> COMPLETED. Returns
	// ErrInvalidTransition otherwise.
	Complete(ctx context.Context, matchID string) (*Match, error)

	// DeletePending removes the pair's match only while it is still
	// PENDING; matches past PENDING are left untouched. Used by swipe
	// undo. No error when nothing is deleted.
	DeletePending(ctx context.Context, volunteerID, vacancyID string) error

	// ResolvedResponseTimes returns, for each of the organisation's
	// resolved matches with a StartedAt, the latency between match
	// creation and resolution. Input for SLA derivation.
	ResolvedResponseTimes(ctx context.Context, orgID string) ([]time.Duration, error)
}

// InMemoryRepository is an in-memory Repository implementation used in
// tests and development. A single mutex covers match and conversation
// state, so the accept-plus-conversation write is atomic.
type InMemoryRepository struct {
	mu            sync.RWMutex
	matches       map[string]*Match        // ID -> match
	pairs         map[string]string        // "volunteer\x00vacancy" -> ID
	conversations map[string]*Conversation // ID -> conversation

	// now is swappable for tests.
	now func() time.Time
}

// NewInMemoryRepository creates an empty in-memory match repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		matches:       make(map[string]*Match),
		pairs:         make(map[string]string),
		conversations: make(map[string]*Conversation),
		now:           time.Now,
	}
}

func pairKey(volunteerID, vacancyID string) string {
	return volunteerID + "\x00" + vacancyID
}

// GetByPair returns the match for the pair.
func (r *InMemoryRepository) GetByPair(ctx context.Context, volunteerID, vacancyID string) (*Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.pairs[pairKey(volunteerID, vacancyID)]
	if !ok {
		return nil, ErrMatchNotFound
	}
	copied := *r.matches[id]
	return &copied, nil
}

// EnsurePending creates or returns the pair's match.
func (r *InMemoryRepository) EnsurePending(ctx context.Context, m *Match) (*Match, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(m.VolunteerID, m.VacancyID)
	if id, ok := r.pairs[key]; ok {
		copied := *r.matches[id]
		return &copied, false, nil
	}

	created := *m
	if created.ID == "" {
		created.ID = uuid.New().String()
	}
	created.Status = StatusPending
	created.CreatedAt = r.now()

	r.matches[created.ID] = &created
	r.pairs[key] = created.ID

	result := created
	return &result, true, nil
}

// Accept transitions PENDING -> ACCEPTED with conversation creation.
func (r *InMemoryRepository) Accept(ctx context.Context, matchID string) (*Match, *Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[matchID]
	if !ok {
		return nil, nil, ErrMatchNotFound
	}
	if m.Status != StatusPending {
		return nil, nil, ErrTerminalState
	}

	now := r.now()
	conv := &Conversation{
		ID:        uuid.New().String(),
		MatchID:   m.ID,
		CreatedAt: now,
	}

	m.Status = StatusAccepted
	if m.StartedAt == nil {
		started := now
		m.StartedAt = &started
	}
	resolved := now
	m.ResolvedAt = &resolved
	m.ConversationID = &conv.ID
	r.conversations[conv.ID] = conv

	matchCopy := *m
	convCopy := *conv
	return &matchCopy, &convCopy, nil
}

// Reject transitions PENDING -> REJECTED.
func (r *InMemoryRepository) Reject(ctx context.Context, matchID string) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[matchID]
	if !ok {
		return nil, ErrMatchNotFound
	}
	if m.Status != StatusPending {
		return nil, ErrTerminalState
	}

	m.Status = StatusRejected
	resolved := r.now()
	m.ResolvedAt = &resolved

	copied := *m
	return &copied, nil
}

// Complete transitions ACCEPTED -> COMPLETED.
func (r *InMemoryRepository) Complete(ctx context.Context, matchID string) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[matchID]
	if !ok {
		return nil, ErrMatchNotFound
	}
	if !CanTransition(m.Status, StatusCompleted) {
		return nil, ErrInvalidTransition
	}

	m.Status = StatusCompleted

	copied := *m
	return &copied, nil
}

// DeletePending removes the pair's match only while still PENDING.
func (r *InMemoryRepository) DeletePending(ctx context.Context, volunteerID, vacancyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(volunteerID, vacancyID)
	id, ok := r.pairs[key]
	if !ok {
		return nil
	}
	if r.matches[id].Status != StatusPending {
		return nil
	}

	delete(r.matches, id)
	delete(r.pairs, key)
	return nil
}

// ResolvedResponseTimes returns creation-to-resolution latencies for the
// organisation's resolved matches with a StartedAt, so rejections never
// enter the average.
func (r *InMemoryRepository) ResolvedResponseTimes(ctx context.Context, orgID string) ([]time.Duration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var durations []time.Duration
	for _, m := range r.matches {
		if m.OrgID != orgID || !m.Status.Resolved() || m.ResolvedAt == nil || m.StartedAt == nil {
			continue
		}
		durations = append(durations, m.ResolvedAt.Sub(m.CreatedAt))
	}
	return durations, nil
}
