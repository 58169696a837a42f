package sla

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrSLANotFound is returned when no snapshot exists for the
// organisation yet.
var ErrSLANotFound = errors.New("sla snapshot not found")

// Store persists computed SLA snapshots.
type Store interface {
	// Save stores a computed snapshot, replacing any previous one.
	Save(ctx context.Context, s OrgSLA) error
	// Get retrieves the organisation's snapshot, or ErrSLANotFound.
	Get(ctx context.Context, orgID string) (*OrgSLA, error)
}

// InMemoryStore is an in-memory Store used in tests and development.
type InMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]OrgSLA
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{snapshots: make(map[string]OrgSLA)}
}

// Save stores the snapshot.
func (s *InMemoryStore) Save(ctx context.Context, snap OrgSLA) error {
	s.mu.Lock()
	s.snapshots[snap.OrgID] = snap
	s.mu.Unlock()
	return nil
}

// Get retrieves the organisation's snapshot.
func (s *InMemoryStore) Get(ctx context.Context, orgID string) (*OrgSLA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[orgID]
	if !ok {
		return nil, ErrSLANotFound
	}
	copied := snap
	return &copied, nil
}

// PostgresStore keeps one snapshot row per organisation in org_sla.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed SLA store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save upserts the organisation's snapshot.
func (s *PostgresStore) Save(ctx context.Context, snap OrgSLA) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO org_sla (org_id, score, avg_response_seconds, resolved_count, computed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (org_id) DO UPDATE SET
			score = EXCLUDED.score,
			avg_response_seconds = EXCLUDED.avg_response_seconds,
			resolved_count = EXCLUDED.resolved_count,
			computed_at = EXCLUDED.computed_at`,
		snap.OrgID, snap.Score, snap.AvgResponseTime.Seconds(), snap.ResolvedCount, snap.ComputedAt)
	if err != nil {
		return fmt.Errorf("save sla snapshot: %w", err)
	}
	return nil
}

// Get retrieves the organisation's snapshot.
func (s *PostgresStore) Get(ctx context.Context, orgID string) (*OrgSLA, error) {
	var (
		snap       OrgSLA
		avgSeconds float64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT org_id, score, avg_response_seconds, resolved_count, computed_at
		FROM org_sla WHERE org_id = $1`, orgID).
		Scan(&snap.OrgID, &snap.Score, &avgSeconds, &snap.ResolvedCount, &snap.ComputedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSLANotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sla snapshot: %w", err)
	}
	snap.AvgResponseTime = time.Duration(avgSeconds * float64(time.Second))
	return &snap, nil
}
