// Package match implements the swipe-driven match state machine: mutual
// interest detection, the PENDING -> ACCEPTED | REJECTED lifecycle with
// conversation creation, and the best-effort post-resolution side effects.
package match

import (
	"errors"
	"time"
)

// Status is the match lifecycle state.
type Status string

// Match states. ACCEPTED, REJECTED and COMPLETED never revert; ACCEPTED
// may advance to COMPLETED by external workflow.
const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusCompleted Status = "COMPLETED"
)

// Common errors for match operations. ErrTerminalState marks a
// transition attempted on an already resolved match.
var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrTerminalState     = errors.New("match is in a terminal state")
	ErrInvalidTransition = errors.New("invalid match state transition")
)

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusAccepted || to == StatusRejected
	case StatusAccepted:
		return to == StatusCompleted
	}
	return false
}

// Resolved reports whether the status counts as an organisational
// response for SLA purposes.
func (s Status) Resolved() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusCompleted
}

// Match pairs a volunteer with a vacancy once mutual interest exists.
// StartedAt is stamped exactly once, on the PENDING -> ACCEPTED
// transition, and anchors SLA computation.
type Match struct {
	ID          string `json:"id"`
	VolunteerID string `json:"volunteer_id"`
	VacancyID   string `json:"vacancy_id"`
	OrgID       string `json:"org_id"`

	Status         Status  `json:"status"`
	ConversationID *string `json:"conversation_id,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Conversation is the message thread opened when a match is accepted. It
// is created in the same transaction as the acceptance.
type Conversation struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	CreatedAt time.Time `json:"created_at"`
}
