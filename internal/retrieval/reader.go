// Package retrieval implements the two-stage ranking pipeline: a broad
// candidate fetch (semantic k-NN when the search index is available,
// recency otherwise) followed by full scoring, sorting and truncation.
package retrieval

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/helpout/helpout-api/internal/profile"
	"github.com/helpout/helpout-api/internal/scoring"
)

// Stage-one and stage-two defaults. The candidate pool is deliberately
// larger than the page so scoring can reorder it.
const (
	DefaultCandidatePool = 200
	DefaultPageSize      = 20
	MaxPageSize          = 100
)

var (
	ErrVolunteerNotFound = errors.New("volunteer not found")
	ErrVacancyNotFound   = errors.New("vacancy not found")
)

// VolunteerReader provides volunteer profiles for ranking.
type VolunteerReader interface {
	// GetVolunteer returns the profile, or ErrVolunteerNotFound.
	GetVolunteer(ctx context.Context, id string) (*profile.Volunteer, error)
	// ListActiveVolunteers returns up to limit recently active
	// volunteers, newest first.
	ListActiveVolunteers(ctx context.Context, limit int) ([]*profile.Volunteer, error)
}

// VacancyReader provides open vacancies for ranking.
type VacancyReader interface {
	// GetVacancy returns the vacancy, or ErrVacancyNotFound.
	GetVacancy(ctx context.Context, id string) (*scoring.Vacancy, error)
	// ListOpenVacancies returns up to limit open vacancies, newest
	// first.
	ListOpenVacancies(ctx context.Context, limit int) ([]*scoring.Vacancy, error)
	// GetVacancies returns the vacancies for the given IDs, preserving
	// order and skipping unknown IDs.
	GetVacancies(ctx context.Context, ids []string) ([]*scoring.Vacancy, error)
}

// InMemoryCatalog is an in-memory VolunteerReader and VacancyReader for
// tests and development.
type InMemoryCatalog struct {
	mu         sync.RWMutex
	volunteers map[string]*profile.Volunteer
	vacancies  map[string]*scoring.Vacancy
}

// NewInMemoryCatalog creates an empty catalog.
func NewInMemoryCatalog() *InMemoryCatalog {
	return &InMemoryCatalog{
		volunteers: make(map[string]*profile.Volunteer),
		vacancies:  make(map[string]*scoring.Vacancy),
	}
}

// PutVolunteer stores a volunteer profile.
func (c *InMemoryCatalog) PutVolunteer(v *profile.Volunteer) {
	c.mu.Lock()
	c.volunteers[v.ID] = v
	c.mu.Unlock()
}

// PutVacancy stores a vacancy.
func (c *InMemoryCatalog) PutVacancy(v *scoring.Vacancy) {
	c.mu.Lock()
	c.vacancies[v.ID] = v
	c.mu.Unlock()
}

// GetVolunteer returns the profile.
func (c *InMemoryCatalog) GetVolunteer(ctx context.Context, id string) (*profile.Volunteer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.volunteers[id]
	if !ok {
		return nil, ErrVolunteerNotFound
	}
	copied := *v
	return &copied, nil
}

// ListActiveVolunteers returns volunteers sorted by ID for determinism.
func (c *InMemoryCatalog) ListActiveVolunteers(ctx context.Context, limit int) ([]*profile.Volunteer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*profile.Volunteer, 0, len(c.volunteers))
	for _, v := range c.volunteers {
		copied := *v
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetVacancy returns the vacancy.
func (c *InMemoryCatalog) GetVacancy(ctx context.Context, id string) (*scoring.Vacancy, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.vacancies[id]
	if !ok {
		return nil, ErrVacancyNotFound
	}
	copied := *v
	return &copied, nil
}

// ListOpenVacancies returns vacancies newest first.
func (c *InMemoryCatalog) ListOpenVacancies(ctx context.Context, limit int) ([]*scoring.Vacancy, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*scoring.Vacancy, 0, len(c.vacancies))
	for _, v := range c.vacancies {
		copied := *v
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetVacancies returns vacancies by ID, preserving order.
func (c *InMemoryCatalog) GetVacancies(ctx context.Context, ids []string) ([]*scoring.Vacancy, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*scoring.Vacancy, 0, len(ids))
	for _, id := range ids {
		if v, ok := c.vacancies[id]; ok {
			copied := *v
			out = append(out, &copied)
		}
	}
	return out, nil
}
