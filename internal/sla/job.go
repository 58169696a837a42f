package sla

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ResponseTimeSource provides resolution latency data for SLA
// derivation. The match repository satisfies this.
type ResponseTimeSource interface {
	ResolvedResponseTimes(ctx context.Context, orgID string) ([]time.Duration, error)
}

// Recompute cycle defaults.
const (
	DefaultRecomputeInterval = 60 * time.Second
	DefaultRecomputeTimeout  = 30 * time.Second
)

// RecomputeJobConfig configures the SLA recompute job.
type RecomputeJobConfig struct {
	// Interval is the duration between recompute cycles.
	Interval time.Duration
	// Timeout bounds each recompute cycle.
	Timeout time.Duration
	// Logger for job activity.
	Logger *slog.Logger
	// Metrics for performance tracking.
	Metrics *Metrics
}

// RecomputeJob periodically rederives SLA snapshots for dirty
// organisations.
type RecomputeJob struct {
	config  RecomputeJobConfig
	tracker *DirtyTracker
	source  ResponseTimeSource
	store   Store

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRecomputeJob creates an SLA recompute job.
func NewRecomputeJob(config RecomputeJobConfig, tracker *DirtyTracker, source ResponseTimeSource, store Store) *RecomputeJob {
	if config.Interval == 0 {
		config.Interval = DefaultRecomputeInterval
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultRecomputeTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &RecomputeJob{
		config:  config,
		tracker: tracker,
		source:  source,
		store:   store,
	}
}

// Start begins the periodic recompute job. Returns immediately; the job
// runs in a background goroutine.
func (j *RecomputeJob) Start(ctx context.Context) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.running = true
	j.stopCh = make(chan struct{})
	j.doneCh = make(chan struct{})
	j.mu.Unlock()

	go j.run(ctx)
}

// Stop signals the job to stop and waits for it to finish.
func (j *RecomputeJob) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	stopCh := j.stopCh
	doneCh := j.doneCh
	j.mu.Unlock()

	close(stopCh)
	<-doneCh

	j.mu.Lock()
	j.running = false
	j.mu.Unlock()
}

// IsRunning reports whether the job loop is active.
func (j *RecomputeJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *RecomputeJob) run(ctx context.Context) {
	defer close(j.doneCh)

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.config.Logger.Info("sla recompute job stopping due to context cancellation")
			return
		case <-j.stopCh:
			j.config.Logger.Info("sla recompute job stopping due to stop signal")
			return
		case <-ticker.C:
			j.recomputeDirtyOrgs(ctx)
		}
	}
}

func (j *RecomputeJob) recomputeDirtyOrgs(parentCtx context.Context) {
	dirtyOrgs := j.tracker.DirtyOrgs()
	if len(dirtyOrgs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(parentCtx, j.config.Timeout)
	defer cancel()

	startTime := time.Now()
	var successCount int

	j.config.Logger.Info("recomputing sla snapshots", "dirty_count", len(dirtyOrgs))

	for i, orgID := range dirtyOrgs {
		select {
		case <-ctx.Done():
			j.config.Logger.Error("sla recompute timeout exceeded",
				"processed", i,
				"total", len(dirtyOrgs),
				"timeout", j.config.Timeout)
			if j.config.Metrics != nil {
				j.config.Metrics.IncRecomputeErrors()
			}
			return
		default:
		}

		if err := j.recomputeOrg(ctx, orgID); err != nil {
			j.config.Logger.Error("failed to recompute sla snapshot",
				"org_id", orgID,
				"error", err)
			if j.config.Metrics != nil {
				j.config.Metrics.IncRecomputeErrors()
			}
			continue
		}

		j.tracker.ClearDirty(orgID)
		successCount++
	}

	duration := time.Since(startTime).Seconds()
	if j.config.Metrics != nil {
		j.config.Metrics.IncRecomputeTotal()
		j.config.Metrics.ObserveRecomputeDuration(duration)
		j.config.Metrics.SetLastRecomputeTimestamp(float64(time.Now().Unix()))
		j.config.Metrics.SetLastRecomputeOrgCount(float64(successCount))
	}

	j.config.Logger.Info("sla recompute completed",
		"duration_seconds", duration,
		"orgs_processed", successCount,
		"orgs_failed", len(dirtyOrgs)-successCount)
}

func (j *RecomputeJob) recomputeOrg(ctx context.Context, orgID string) error {
	responseTimes, err := j.source.ResolvedResponseTimes(ctx, orgID)
	if err != nil {
		return err
	}

	snap := Compute(orgID, responseTimes, time.Now())
	if err := j.store.Save(ctx, snap); err != nil {
		return err
	}

	j.config.Logger.Debug("sla snapshot recomputed",
		"org_id", orgID,
		"score", snap.Score,
		"resolved_count", snap.ResolvedCount)
	return nil
}

// RecomputeNow immediately recomputes all dirty organisations without
// waiting for the ticker.
func (j *RecomputeJob) RecomputeNow() {
	j.recomputeDirtyOrgs(context.Background())
}
