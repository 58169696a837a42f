// Package swipe provides swipe recording with the per-subject daily cap,
// most-recent-only undo, and the repository contracts backing both.
package swipe

import (
	"errors"
	"time"

	"github.com/helpout/helpout-api/internal/scoring"
)

// Direction is the swipe direction.
type Direction string

// Valid swipe directions.
const (
	DirectionLike      Direction = "LIKE"
	DirectionDislike   Direction = "DISLIKE"
	DirectionSuperLike Direction = "SUPER_LIKE"
)

// Common errors for swipe operations. ErrNotLatestSwipe and
// ErrDailyCapExceeded are precondition violations surfaced to the user.
var (
	ErrInvalidDirection = errors.New("invalid swipe direction")
	ErrSwipeNotFound    = errors.New("swipe not found")
	ErrNotLatestSwipe   = errors.New("only the most recent swipe can be undone")
	ErrDailyCapExceeded = errors.New("daily swipe limit reached")
)

// ParseDirection validates and canonicalizes a direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionLike, DirectionDislike, DirectionSuperLike:
		return Direction(s), nil
	}
	return "", ErrInvalidDirection
}

// Interested reports whether the direction expresses interest (LIKE or
// SUPER_LIKE), i.e. can contribute to a match.
func (d Direction) Interested() bool {
	return d == DirectionLike || d == DirectionSuperLike
}

// Swipe records a directional swipe by a subject on a candidate. The
// optional Score snapshot is immutable analytics data, never a source of
// truth.
type Swipe struct {
	ID          string              `json:"id"`
	SubjectID   string              `json:"subject_id"`
	CandidateID string              `json:"candidate_id"`
	Direction   Direction           `json:"direction"`
	Reason      *string             `json:"reason,omitempty"`
	Score       *scoring.MatchScore `json:"score,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// UpsertResult reports whether the swipe write inserted a new row or
// overwrote the existing row for the pair.
type UpsertResult struct {
	Inserted bool
	Swipe    *Swipe
}

// StartOfDay returns local midnight for the given time. The daily cap
// resets on this boundary.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
