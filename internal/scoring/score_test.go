package scoring

import (
	"testing"
	"time"

	"github.com/helpout/helpout-api/internal/profile"
	"github.com/helpout/helpout-api/internal/weights"
)

// TestScoreScenarioA covers the end-to-end scenario: a maximally
// motivated volunteer without a values profile against a remote vacancy
// in a fully-overlapping category created today with no required skills.
func TestScoreScenarioA(t *testing.T) {
	now := time.Now()
	v := &profile.Volunteer{
		VFI:       []float64{5, 5, 5, 5, 5, 5},
		Interests: []string{"environment"},
	}
	c := &Vacancy{
		Categories:    []string{"environment"},
		Remote:        true,
		CreatedAt:     now,
		OrgSwipeCount: 50, // between thresholds: fairness neutral
	}

	score := Score(v, c, weights.Defaults(), now)

	if score.Motivation < 80 {
		t.Errorf("expected high motivation, got %f", score.Motivation)
	}
	if score.Distance != 100 {
		t.Errorf("expected distance 100 for remote, got %f", score.Distance)
	}
	if score.Skill != skillNoneRequiredScore {
		t.Errorf("expected skill %f, got %f", skillNoneRequiredScore, score.Skill)
	}
	if score.Freshness != 100 {
		t.Errorf("expected freshness 100, got %f", score.Freshness)
	}
	if score.Fairness != 1.0 {
		t.Errorf("expected neutral fairness, got %f", score.Fairness)
	}
	if score.Total < 80 || score.Total > 100 {
		t.Errorf("expected total in [80, 100], got %f", score.Total)
	}
}

// TestScoreTotalBounded verifies the total stays in [0, 100] across
// combinations of extreme inputs and fairness boosts.
func TestScoreTotalBounded(t *testing.T) {
	now := time.Now()
	volunteers := []*profile.Volunteer{
		{},
		{VFI: []float64{5, 5, 5, 5, 5, 5}, Interests: []string{"environment"}, Skills: []string{"driving"}},
		{VFI: []float64{1, 1, 1, 1, 1, 1}},
	}
	vacancies := []*Vacancy{
		{Remote: true, CreatedAt: now, OrgSwipeCount: 0},
		{Categories: []string{"environment"}, RequiredSkills: []string{"driving"}, CreatedAt: now, OrgSwipeCount: 0},
		{CreatedAt: now.Add(-400 * 24 * time.Hour), OrgSwipeCount: 10000},
	}

	for _, v := range volunteers {
		for _, c := range vacancies {
			score := Score(v, c, weights.Defaults(), now)
			if score.Total < 0 || score.Total > 100 {
				t.Errorf("total %f out of [0, 100]", score.Total)
			}
			if len(score.Highlights) > MaxHighlights {
				t.Errorf("got %d highlights, max is %d", len(score.Highlights), MaxHighlights)
			}
		}
	}
}

// TestScoreFairnessBoostApplied verifies the multiplier moves the total,
// not the components.
func TestScoreFairnessBoostApplied(t *testing.T) {
	now := time.Now()
	v := &profile.Volunteer{VFI: profile.NeutralVFI()}
	small := &Vacancy{CreatedAt: now, OrgSwipeCount: 0, Remote: true}
	neutral := &Vacancy{CreatedAt: now, OrgSwipeCount: 50, Remote: true}

	w := weights.Defaults()
	boosted := Score(v, small, w, now)
	plain := Score(v, neutral, w, now)

	if boosted.Fairness != FairnessMax {
		t.Errorf("expected fairness %f, got %f", FairnessMax, boosted.Fairness)
	}
	if boosted.Total <= plain.Total {
		t.Errorf("expected boost to raise total: %f vs %f", boosted.Total, plain.Total)
	}
	if boosted.Motivation != plain.Motivation {
		t.Error("fairness must not change component scores")
	}
}
