package scoring

import (
	"time"

	"github.com/helpout/helpout-api/internal/profile"
	"github.com/helpout/helpout-api/internal/weights"
)

// Score computes the full MatchScore between a volunteer and a vacancy:
// the four component scores combined by the configured weights, corrected
// by the fairness multiplier, clamped to [0, 100]. Highlights are drawn
// from the components in motivation, distance, skill order and capped at
// MaxHighlights.
func Score(v *profile.Volunteer, c *Vacancy, w weights.Weights, now time.Time) MatchScore {
	motivation := MotivationScore(v, c)
	distance := DistanceScore(v, c)
	skill := SkillScore(v, c)
	freshness := FreshnessScore(c, now, w.FreshnessDays)

	fairness := FairnessMultiplier(c.OrgSwipeCount, w.SmallOrgThreshold, w.LargeOrgThreshold)

	total := (w.Motivation*motivation.Score +
		w.Distance*distance.Score +
		w.Skill*skill.Score +
		w.Freshness*freshness.Score) * fairness

	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	var highlights []string
	for _, component := range []Component{motivation, distance, skill} {
		highlights = append(highlights, component.Highlights...)
	}
	if len(highlights) > MaxHighlights {
		highlights = highlights[:MaxHighlights]
	}

	return MatchScore{
		Total:      total,
		Motivation: motivation.Score,
		Distance:   distance.Score,
		Skill:      skill.Score,
		Freshness:  freshness.Score,
		Fairness:   fairness,
		Highlights: highlights,
	}
}
