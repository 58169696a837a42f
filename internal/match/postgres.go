package match

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresRepository is the Postgres-backed match repository. The matches
// table carries UNIQUE (volunteer_id, vacancy_id); Accept runs in a
// transaction so the match update and conversation insert commit
// together or not at all.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a Postgres-backed match repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const matchColumns = `id, volunteer_id, vacancy_id, org_id, status, conversation_id, created_at, started_at, resolved_at`

// GetByPair returns the match for the pair.
func (r *PostgresRepository) GetByPair(ctx context.Context, volunteerID, vacancyID string) (*Match, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE volunteer_id = $1 AND vacancy_id = $2`, volunteerID, vacancyID)
	return scanMatch(row)
}

// EnsurePending inserts a PENDING match for the pair; on conflict the
// existing row is returned unchanged.
func (r *PostgresRepository) EnsurePending(ctx context.Context, m *Match) (*Match, bool, error) {
	id := m.ID
	if id == "" {
		id = uuid.New().String()
	}

	// DO UPDATE SET id = matches.id is a no-op write that makes RETURNING
	// yield the existing row on conflict.
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO matches (id, volunteer_id, vacancy_id, org_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (volunteer_id, vacancy_id) DO UPDATE SET id = matches.id
		RETURNING `+matchColumns+`, (xmax = 0)`,
		id, m.VolunteerID, m.VacancyID, m.OrgID, string(StatusPending))

	var (
		stored   Match
		status   string
		inserted bool
	)
	err := row.Scan(&stored.ID, &stored.VolunteerID, &stored.VacancyID, &stored.OrgID,
		&status, &stored.ConversationID, &stored.CreatedAt, &stored.StartedAt, &stored.ResolvedAt,
		&inserted)
	if err != nil {
		return nil, false, fmt.Errorf("ensure pending match: %w", err)
	}
	stored.Status = Status(status)
	return &stored, inserted, nil
}

// Accept transitions PENDING -> ACCEPTED and creates the conversation in
// one transaction. StartedAt is stamped by COALESCE so it is set exactly
// once.
func (r *PostgresRepository) Accept(ctx context.Context, matchID string) (*Match, *Conversation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin accept tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		UPDATE matches SET
			status = $2,
			started_at = COALESCE(started_at, NOW()),
			resolved_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING `+matchColumns,
		matchID, string(StatusAccepted), string(StatusPending))

	m, err := scanMatch(row)
	if err == ErrMatchNotFound {
		// Either absent or not PENDING; disambiguate for the caller.
		var exists bool
		if probeErr := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM matches WHERE id = $1)`, matchID).Scan(&exists); probeErr != nil {
			return nil, nil, fmt.Errorf("probe match state: %w", probeErr)
		}
		if exists {
			return nil, nil, ErrTerminalState
		}
		return nil, nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	conv := &Conversation{ID: uuid.New().String(), MatchID: m.ID}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO conversations (id, match_id, created_at)
		VALUES ($1, $2, NOW())
		RETURNING created_at`, conv.ID, conv.MatchID).Scan(&conv.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("create conversation: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE matches SET conversation_id = $2 WHERE id = $1`, m.ID, conv.ID); err != nil {
		return nil, nil, fmt.Errorf("link conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit accept tx: %w", err)
	}

	m.ConversationID = &conv.ID
	return m, conv, nil
}

// Reject transitions PENDING -> REJECTED.
func (r *PostgresRepository) Reject(ctx context.Context, matchID string) (*Match, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE matches SET status = $2, resolved_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING `+matchColumns,
		matchID, string(StatusRejected), string(StatusPending))

	m, err := scanMatch(row)
	if err == ErrMatchNotFound {
		return nil, r.disambiguate(ctx, matchID)
	}
	return m, err
}

// Complete transitions ACCEPTED -> COMPLETED.
func (r *PostgresRepository) Complete(ctx context.Context, matchID string) (*Match, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE matches SET status = $2
		WHERE id = $1 AND status = $3
		RETURNING `+matchColumns,
		matchID, string(StatusCompleted), string(StatusAccepted))

	m, err := scanMatch(row)
	if err == ErrMatchNotFound {
		var exists bool
		if probeErr := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM matches WHERE id = $1)`, matchID).Scan(&exists); probeErr != nil {
			return nil, fmt.Errorf("probe match state: %w", probeErr)
		}
		if exists {
			return nil, ErrInvalidTransition
		}
		return nil, ErrMatchNotFound
	}
	return m, err
}

// DeletePending removes the pair's match only while still PENDING.
func (r *PostgresRepository) DeletePending(ctx context.Context, volunteerID, vacancyID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM matches
		WHERE volunteer_id = $1 AND vacancy_id = $2 AND status = $3`,
		volunteerID, vacancyID, string(StatusPending))
	if err != nil {
		return fmt.Errorf("delete pending match: %w", err)
	}
	return nil
}

// ResolvedResponseTimes returns creation-to-resolution latencies for
// matches that reached ACCEPTED, so rejections never enter the average.
func (r *PostgresRepository) ResolvedResponseTimes(ctx context.Context, orgID string) ([]time.Duration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT EXTRACT(EPOCH FROM (resolved_at - created_at))
		FROM matches
		WHERE org_id = $1 AND resolved_at IS NOT NULL AND started_at IS NOT NULL`, orgID)
	if err != nil {
		return nil, fmt.Errorf("query response times: %w", err)
	}
	defer rows.Close()

	var durations []time.Duration
	for rows.Next() {
		var seconds float64
		if err := rows.Scan(&seconds); err != nil {
			return nil, fmt.Errorf("scan response time: %w", err)
		}
		durations = append(durations, time.Duration(seconds*float64(time.Second)))
	}
	return durations, rows.Err()
}

func (r *PostgresRepository) disambiguate(ctx context.Context, matchID string) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM matches WHERE id = $1)`, matchID).Scan(&exists); err != nil {
		return fmt.Errorf("probe match state: %w", err)
	}
	if exists {
		return ErrTerminalState
	}
	return ErrMatchNotFound
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*Match, error) {
	var (
		m      Match
		status string
	)
	err := row.Scan(&m.ID, &m.VolunteerID, &m.VacancyID, &m.OrgID,
		&status, &m.ConversationID, &m.CreatedAt, &m.StartedAt, &m.ResolvedAt)
	if err == sql.ErrNoRows {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan match: %w", err)
	}
	m.Status = Status(status)
	return &m, nil
}
