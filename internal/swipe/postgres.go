package swipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/helpout/helpout-api/internal/scoring"
)

// PostgresRepository is the Postgres-backed swipe repository. The swipes
// table carries UNIQUE (subject_id, candidate_id); the upsert relies on
// ON CONFLICT so two racing writes for the same pair commit one row.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a Postgres-backed swipe repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert writes the swipe under the pair-uniqueness constraint. The
// (xmax = 0) projection distinguishes insert from update on conflict.
func (r *PostgresRepository) Upsert(ctx context.Context, s *Swipe) (*UpsertResult, error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	var scoreJSON []byte
	if s.Score != nil {
		var err error
		scoreJSON, err = json.Marshal(s.Score)
		if err != nil {
			return nil, fmt.Errorf("marshal score snapshot: %w", err)
		}
	}

	var (
		id        string
		inserted  bool
		createdAt time.Time
	)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO swipes (id, subject_id, candidate_id, direction, reason, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (subject_id, candidate_id) DO UPDATE SET
			direction = EXCLUDED.direction,
			reason = EXCLUDED.reason,
			score = EXCLUDED.score
		RETURNING id, (xmax = 0), created_at`,
		s.ID, s.SubjectID, s.CandidateID, string(s.Direction), s.Reason, scoreJSON,
	).Scan(&id, &inserted, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("upsert swipe: %w", err)
	}

	stored := *s
	stored.ID = id
	stored.CreatedAt = createdAt
	return &UpsertResult{Inserted: inserted, Swipe: &stored}, nil
}

// Latest returns the subject's most recent swipe.
func (r *PostgresRepository) Latest(ctx context.Context, subjectID string) (*Swipe, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, subject_id, candidate_id, direction, reason, score, created_at
		FROM swipes
		WHERE subject_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, subjectID)

	return scanSwipe(row)
}

// Delete removes a swipe by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM swipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete swipe: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete swipe: %w", err)
	}
	if affected == 0 {
		return ErrSwipeNotFound
	}
	return nil
}

// CountSince counts the subject's swipes created at or after since.
func (r *PostgresRepository) CountSince(ctx context.Context, subjectID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM swipes
		WHERE subject_id = $1 AND created_at >= $2`, subjectID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count swipes: %w", err)
	}
	return count, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSwipe(row rowScanner) (*Swipe, error) {
	var (
		s         Swipe
		direction string
		scoreJSON []byte
	)
	err := row.Scan(&s.ID, &s.SubjectID, &s.CandidateID, &direction, &s.Reason, &scoreJSON, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSwipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan swipe: %w", err)
	}

	s.Direction = Direction(direction)
	if len(scoreJSON) > 0 {
		var score scoring.MatchScore
		if err := json.Unmarshal(scoreJSON, &score); err != nil {
			return nil, fmt.Errorf("unmarshal score snapshot: %w", err)
		}
		s.Score = &score
	}
	return &s, nil
}
