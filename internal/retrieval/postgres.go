package retrieval

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/helpout/helpout-api/internal/profile"
	"github.com/helpout/helpout-api/internal/scoring"
)

// PostgresCatalog reads volunteer and vacancy rows for ranking. The
// org swipe count comes from a scalar subquery over swipes against the
// organisation's vacancies, so fairness always sees current data.
type PostgresCatalog struct {
	db *sql.DB
}

// NewPostgresCatalog creates a Postgres-backed catalog.
func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

const volunteerColumns = `id, vfi, values_profile, interests, skills, lat, lng, max_distance_km, embedding`

func scanVolunteer(row rowScanner) (*profile.Volunteer, error) {
	var (
		v        profile.Volunteer
		lat, lng sql.NullFloat64
	)
	err := row.Scan(&v.ID,
		pq.Array(&v.VFI), pq.Array(&v.Values),
		pq.Array(&v.Interests), pq.Array(&v.Skills),
		&lat, &lng, &v.MaxDistanceKm,
		(*pq.Float32Array)(&v.Embedding))
	if err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		v.Location = &profile.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &v, nil
}

// GetVolunteer returns the volunteer's profile snapshot.
func (c *PostgresCatalog) GetVolunteer(ctx context.Context, id string) (*profile.Volunteer, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT `+volunteerColumns+` FROM volunteers WHERE id = $1`, id)

	v, err := scanVolunteer(row)
	if err == sql.ErrNoRows {
		return nil, ErrVolunteerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get volunteer: %w", err)
	}
	return v, nil
}

// ListActiveVolunteers returns recently active volunteers, newest
// activity first.
func (c *PostgresCatalog) ListActiveVolunteers(ctx context.Context, limit int) ([]*profile.Volunteer, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+volunteerColumns+` FROM volunteers
		WHERE active
		ORDER BY last_active_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list volunteers: %w", err)
	}
	defer rows.Close()

	var out []*profile.Volunteer
	for rows.Next() {
		v, err := scanVolunteer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan volunteer: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

const vacancyColumns = `v.id, v.org_id, v.title, v.categories, v.required_skills,
	v.lat, v.lng, v.remote, v.created_at,
	(SELECT COUNT(*) FROM swipes s
	 JOIN vacancies sv ON s.candidate_id = sv.id
	 WHERE sv.org_id = v.org_id) AS org_swipe_count`

func scanVacancy(row rowScanner) (*scoring.Vacancy, error) {
	var (
		c        scoring.Vacancy
		lat, lng sql.NullFloat64
	)
	err := row.Scan(&c.ID, &c.OrgID, &c.Title,
		pq.Array(&c.Categories), pq.Array(&c.RequiredSkills),
		&lat, &lng, &c.Remote, &c.CreatedAt, &c.OrgSwipeCount)
	if err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		c.Location = &profile.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &c, nil
}

// GetVacancy returns the vacancy.
func (c *PostgresCatalog) GetVacancy(ctx context.Context, id string) (*scoring.Vacancy, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT `+vacancyColumns+` FROM vacancies v WHERE v.id = $1`, id)

	vac, err := scanVacancy(row)
	if err == sql.ErrNoRows {
		return nil, ErrVacancyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vacancy: %w", err)
	}
	return vac, nil
}

// ListOpenVacancies returns open vacancies, newest first.
func (c *PostgresCatalog) ListOpenVacancies(ctx context.Context, limit int) ([]*scoring.Vacancy, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+vacancyColumns+` FROM vacancies v
		WHERE v.open
		ORDER BY v.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list vacancies: %w", err)
	}
	defer rows.Close()

	return collectVacancies(rows)
}

// GetVacancies returns open vacancies for the given IDs. Postgres does
// not preserve the input order, so the result is reordered to match.
func (c *PostgresCatalog) GetVacancies(ctx context.Context, ids []string) ([]*scoring.Vacancy, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT `+vacancyColumns+` FROM vacancies v
		WHERE v.open AND v.id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get vacancies: %w", err)
	}
	defer rows.Close()

	fetched, err := collectVacancies(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*scoring.Vacancy, len(fetched))
	for _, v := range fetched {
		byID[v.ID] = v
	}
	out := make([]*scoring.Vacancy, 0, len(fetched))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func collectVacancies(rows *sql.Rows) ([]*scoring.Vacancy, error) {
	var out []*scoring.Vacancy
	for rows.Next() {
		v, err := scanVacancy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vacancy: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}
