// Package weights provides the runtime-tunable scoring weight
// configuration: validation, the authoritative backing store contract,
// and a TTL-cached read path that never fails a scoring request.
package weights

import (
	"errors"
	"fmt"
	"math"
)

// SumTolerance is the maximum allowed deviation of the four component
// weights from 1.0.
const SumTolerance = 0.005

// Validation errors.
var (
	ErrWeightOutOfRange  = errors.New("component weights must be in [0, 1]")
	ErrInvalidWindow     = errors.New("freshness window must be positive")
	ErrInvalidThresholds = errors.New("organisation swipe thresholds must be positive and small < large")
)

// Weights holds the four component weights plus the tunable scoring
// parameters. The component weights must sum to 1 within SumTolerance.
type Weights struct {
	Motivation float64 `json:"motivation"`
	Distance   float64 `json:"distance"`
	Skill      float64 `json:"skill"`
	Freshness  float64 `json:"freshness"`

	// FreshnessDays is the decay window: a vacancy this old scores 0.
	FreshnessDays int `json:"freshness_days"`

	// SmallOrgThreshold and LargeOrgThreshold bound the fairness
	// correction: orgs below the small threshold are boosted, orgs above
	// the large threshold are dampened.
	SmallOrgThreshold int `json:"small_org_threshold"`
	LargeOrgThreshold int `json:"large_org_threshold"`
}

// Default tuning values seeded at deploy time.
const (
	DefaultMotivation = 0.45
	DefaultDistance   = 0.25
	DefaultSkill      = 0.20
	DefaultFreshness  = 0.10

	DefaultFreshnessDays     = 60
	DefaultSmallOrgThreshold = 10
	DefaultLargeOrgThreshold = 200
)

// Defaults returns the hard-coded default weight configuration.
func Defaults() Weights {
	return Weights{
		Motivation:        DefaultMotivation,
		Distance:          DefaultDistance,
		Skill:             DefaultSkill,
		Freshness:         DefaultFreshness,
		FreshnessDays:     DefaultFreshnessDays,
		SmallOrgThreshold: DefaultSmallOrgThreshold,
		LargeOrgThreshold: DefaultLargeOrgThreshold,
	}
}

// ComponentSum returns the sum of the four component weights.
func (w Weights) ComponentSum() float64 {
	return w.Motivation + w.Distance + w.Skill + w.Freshness
}

// Validate checks the sum-to-one invariant and parameter bounds. Invalid
// weights are rejected with a descriptive error, never silently clamped.
func (w Weights) Validate() error {
	for _, c := range []float64{w.Motivation, w.Distance, w.Skill, w.Freshness} {
		if c < 0 || c > 1 {
			return ErrWeightOutOfRange
		}
	}

	sum := w.ComponentSum()
	if math.Abs(sum-1.0) > SumTolerance {
		return fmt.Errorf("component weights must sum to 1.0 (±%g), got %.4f", SumTolerance, sum)
	}

	if w.FreshnessDays <= 0 {
		return ErrInvalidWindow
	}
	if w.SmallOrgThreshold <= 0 || w.LargeOrgThreshold <= 0 || w.SmallOrgThreshold >= w.LargeOrgThreshold {
		return ErrInvalidThresholds
	}

	return nil
}
