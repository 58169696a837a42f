package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/helpout/helpout-api/internal/geo"
	"github.com/helpout/helpout-api/internal/profile"
	"github.com/helpout/helpout-api/internal/scoring"
	"github.com/helpout/helpout-api/internal/weights"
)

// RankedVacancy is a vacancy with its score for one volunteer.
type RankedVacancy struct {
	Vacancy *scoring.Vacancy   `json:"vacancy"`
	Score   scoring.MatchScore `json:"score"`
}

// RankedVolunteer is a volunteer with their score for one vacancy.
type RankedVolunteer struct {
	Volunteer *profile.Volunteer `json:"volunteer"`
	Score     scoring.MatchScore `json:"score"`
}

// Pipeline runs both ranking directions. Stage one gathers a candidate
// pool; stage two scores every candidate with the current weights and
// returns the top page, highest total first.
type Pipeline struct {
	volunteers VolunteerReader
	vacancies  VacancyReader
	semantic   SemanticIndex
	weights    *weights.Cache
	pool       int
	logger     *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewPipeline creates a ranking pipeline. semantic may be nil, in which
// case stage one is always recency-based.
func NewPipeline(volunteers VolunteerReader, vacancies VacancyReader, semantic SemanticIndex, w *weights.Cache, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		volunteers: volunteers,
		vacancies:  vacancies,
		semantic:   semantic,
		weights:    w,
		pool:       DefaultCandidatePool,
		logger:     logger,
		now:        time.Now,
	}
}

func clampPageSize(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// RankVacancies returns the volunteer's best vacancies.
func (p *Pipeline) RankVacancies(ctx context.Context, volunteerID string, limit int) ([]RankedVacancy, error) {
	limit = clampPageSize(limit)

	volunteer, err := p.volunteers.GetVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, err
	}

	candidates, err := p.vacancyCandidates(ctx, volunteer)
	if err != nil {
		return nil, err
	}

	w := p.weights.Get(ctx)
	now := p.now()

	ranked := make([]RankedVacancy, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, RankedVacancy{
			Vacancy: c,
			Score:   scoring.Score(volunteer, c, w, now),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score.Total != ranked[j].Score.Total {
			return ranked[i].Score.Total > ranked[j].Score.Total
		}
		return ranked[i].Vacancy.ID < ranked[j].Vacancy.ID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// RankVolunteers returns the vacancy's best volunteers.
func (p *Pipeline) RankVolunteers(ctx context.Context, vacancyID string, limit int) ([]RankedVolunteer, error) {
	limit = clampPageSize(limit)

	vacancy, err := p.vacancies.GetVacancy(ctx, vacancyID)
	if err != nil {
		return nil, err
	}

	candidates, err := p.volunteers.ListActiveVolunteers(ctx, p.pool)
	if err != nil {
		return nil, fmt.Errorf("list volunteer candidates: %w", err)
	}

	w := p.weights.Get(ctx)
	now := p.now()

	ranked := make([]RankedVolunteer, 0, len(candidates))
	for _, v := range candidates {
		ranked = append(ranked, RankedVolunteer{
			Volunteer: v,
			Score:     scoring.Score(v, vacancy, w, now),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score.Total != ranked[j].Score.Total {
			return ranked[i].Score.Total > ranked[j].Score.Total
		}
		return ranked[i].Volunteer.ID < ranked[j].Volunteer.ID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// vacancyCandidates gathers the stage-one pool: semantic k-NN when the
// volunteer has an embedding and the index answers, recency otherwise.
func (p *Pipeline) vacancyCandidates(ctx context.Context, volunteer *profile.Volunteer) ([]*scoring.Vacancy, error) {
	if p.semantic != nil && len(volunteer.Embedding) > 0 {
		ids, err := p.semantic.SimilarVacancyIDs(ctx, volunteer.Embedding, p.pool)
		if err == nil && len(ids) > 0 {
			candidates, err := p.vacancies.GetVacancies(ctx, ids)
			if err == nil && len(candidates) > 0 {
				return filterReachable(volunteer, candidates), nil
			}
			if err != nil {
				p.logger.Warn("resolving semantic candidates failed, falling back to recency",
					"volunteer_id", volunteer.ID, "error", err)
			}
		} else if err != nil {
			p.logger.Warn("semantic retrieval failed, falling back to recency",
				"volunteer_id", volunteer.ID, "error", err)
		}
	}

	candidates, err := p.vacancies.ListOpenVacancies(ctx, p.pool)
	if err != nil {
		return nil, fmt.Errorf("list vacancy candidates: %w", err)
	}
	return filterReachable(volunteer, candidates), nil
}

// filterReachable drops on-site vacancies beyond the volunteer's travel
// range. Remote vacancies and candidates with unknown coordinates pass.
func filterReachable(volunteer *profile.Volunteer, candidates []*scoring.Vacancy) []*scoring.Vacancy {
	if volunteer.Location == nil {
		return candidates
	}

	out := candidates[:0]
	for _, c := range candidates {
		if !c.Remote && c.Location != nil {
			d := geo.HaversineKm(volunteer.Location.Lat, volunteer.Location.Lng,
				c.Location.Lat, c.Location.Lng)
			if d > volunteer.TravelRangeKm() {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
