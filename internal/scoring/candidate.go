// Package scoring implements the match scoring engine: four component
// scorers, the fairness correction, and the weighted composite score
// between a volunteer profile and a vacancy.
//
// Scoring is pure and stateless per request: given a subject profile and
// a candidate, every function computes without shared mutable state, so
// candidates within one request can be scored in parallel.
package scoring

import (
	"time"

	"github.com/helpout/helpout-api/internal/profile"
)

// Vacancy is the candidate-side snapshot consumed by the scorers. The
// same struct serves both ranking directions: vacancies ranked for a
// volunteer, and volunteers ranked against a fixed vacancy.
type Vacancy struct {
	ID    string `json:"id"`
	OrgID string `json:"org_id"`
	Title string `json:"title"`

	Categories     []string `json:"categories"`
	RequiredSkills []string `json:"required_skills"`

	Location *profile.Coordinate `json:"location,omitempty"`
	Remote   bool                `json:"remote"`

	CreatedAt time.Time `json:"created_at"`

	// OrgSwipeCount is the owning organisation's historical swipe volume,
	// the popularity proxy driving the fairness correction.
	OrgSwipeCount int `json:"org_swipe_count"`
}

// Component holds one scorer's output: a [0, 100] sub-score and its
// human-readable highlights.
type Component struct {
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights,omitempty"`
}

// MatchScore is the derived, ephemeral scoring result. It is never
// persisted as a source of truth, only as an immutable snapshot attached
// to a swipe record for analytics.
type MatchScore struct {
	Total float64 `json:"total"`

	Motivation float64 `json:"motivation"`
	Distance   float64 `json:"distance"`
	Skill      float64 `json:"skill"`
	Freshness  float64 `json:"freshness"`

	// Fairness is the multiplier applied to the weighted component sum.
	Fairness float64 `json:"fairness"`

	// Highlights holds at most MaxHighlights short strings for the UI.
	Highlights []string `json:"highlights,omitempty"`
}

// MaxHighlights caps the highlight strings surfaced per match.
const MaxHighlights = 3
