package weights

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore is the Postgres-backed Store implementation. Weights live
// in a single-row table keyed by id=1; Save upserts that row.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed weights store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load reads the singleton weights row.
func (s *PostgresStore) Load(ctx context.Context) (Weights, error) {
	var w Weights
	err := s.db.QueryRowContext(ctx, `
		SELECT motivation, distance, skill, freshness,
		       freshness_days, small_org_threshold, large_org_threshold
		FROM scoring_weights
		WHERE id = 1`).Scan(
		&w.Motivation, &w.Distance, &w.Skill, &w.Freshness,
		&w.FreshnessDays, &w.SmallOrgThreshold, &w.LargeOrgThreshold,
	)
	if err == sql.ErrNoRows {
		return Weights{}, ErrNoStoredWeights
	}
	if err != nil {
		return Weights{}, fmt.Errorf("load scoring weights: %w", err)
	}
	return w, nil
}

// Save upserts the singleton weights row.
func (s *PostgresStore) Save(ctx context.Context, w Weights) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scoring_weights (
			id, motivation, distance, skill, freshness,
			freshness_days, small_org_threshold, large_org_threshold, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			motivation = EXCLUDED.motivation,
			distance = EXCLUDED.distance,
			skill = EXCLUDED.skill,
			freshness = EXCLUDED.freshness,
			freshness_days = EXCLUDED.freshness_days,
			small_org_threshold = EXCLUDED.small_org_threshold,
			large_org_threshold = EXCLUDED.large_org_threshold,
			updated_at = NOW()`,
		w.Motivation, w.Distance, w.Skill, w.Freshness,
		w.FreshnessDays, w.SmallOrgThreshold, w.LargeOrgThreshold,
	)
	if err != nil {
		return fmt.Errorf("save scoring weights: %w", err)
	}
	return nil
}
