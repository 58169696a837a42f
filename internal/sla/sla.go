// Package sla derives organisation responsiveness scores from match
// resolution latency and keeps them fresh through a background
// recompute job.
package sla

import (
	"sync"
	"time"
)

// Response-time anchors for the score mapping. At or under FullScoreAfter
// the organisation scores 100; at or over ZeroScoreAfter it scores 0,
// with linear interpolation between.
const (
	FullScoreAfter = 24 * time.Hour
	ZeroScoreAfter = 168 * time.Hour
)

// Score maps a response time to [0, 100].
func Score(responseTime time.Duration) float64 {
	if responseTime <= FullScoreAfter {
		return 100
	}
	if responseTime >= ZeroScoreAfter {
		return 0
	}
	span := float64(ZeroScoreAfter - FullScoreAfter)
	elapsed := float64(responseTime - FullScoreAfter)
	return 100 * (1 - elapsed/span)
}

// OrgSLA is an organisation's derived responsiveness snapshot.
type OrgSLA struct {
	OrgID           string        `json:"org_id"`
	Score           float64       `json:"score"`
	AvgResponseTime time.Duration `json:"avg_response_time_ns"`
	ResolvedCount   int           `json:"resolved_count"`
	ComputedAt      time.Time     `json:"computed_at"`
}

// Compute derives the SLA snapshot from the organisation's resolution
// latencies: the average response time is computed first and the score
// is the linear map of that average. An organisation with no resolved
// matches yet gets a neutral full score so new organisations are not
// penalised.
func Compute(orgID string, responseTimes []time.Duration, now time.Time) OrgSLA {
	result := OrgSLA{
		OrgID:         orgID,
		ResolvedCount: len(responseTimes),
		ComputedAt:    now,
	}
	if len(responseTimes) == 0 {
		result.Score = 100
		return result
	}

	var total time.Duration
	for _, rt := range responseTimes {
		total += rt
	}
	result.AvgResponseTime = total / time.Duration(len(responseTimes))
	result.Score = Score(result.AvgResponseTime)
	return result
}

// DirtyTracker records which organisations need SLA recomputation.
// Thread-safe via RWMutex.
type DirtyTracker struct {
	mu    sync.RWMutex
	dirty map[string]time.Time // orgID -> time marked dirty
}

// NewDirtyTracker creates an empty tracker.
func NewDirtyTracker() *DirtyTracker {
	return &DirtyTracker{dirty: make(map[string]time.Time)}
}

// MarkDirty flags an organisation for recomputation.
func (t *DirtyTracker) MarkDirty(orgID string) {
	t.mu.Lock()
	t.dirty[orgID] = time.Now()
	t.mu.Unlock()
}

// ClearDirty removes the flag after recomputation.
func (t *DirtyTracker) ClearDirty(orgID string) {
	t.mu.Lock()
	delete(t.dirty, orgID)
	t.mu.Unlock()
}

// DirtyOrgs returns a copy of the flagged organisation IDs.
func (t *DirtyTracker) DirtyOrgs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	orgs := make([]string, 0, len(t.dirty))
	for orgID := range t.dirty {
		orgs = append(orgs, orgID)
	}
	return orgs
}

// IsDirty reports whether the organisation is flagged.
func (t *DirtyTracker) IsDirty(orgID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.dirty[orgID]
	return ok
}

// DirtyCount returns the number of flagged organisations.
func (t *DirtyTracker) DirtyCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.dirty)
}
