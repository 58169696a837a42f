package sla

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Service reads SLA snapshots, computing one on demand when an
// organisation has never been through the recompute job.
type Service struct {
	store  Store
	source ResponseTimeSource

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates an SLA read service.
func NewService(store Store, source ResponseTimeSource) *Service {
	return &Service{store: store, source: source, now: time.Now}
}

// Get returns the organisation's snapshot. A miss triggers an on-demand
// computation which is stored so the next read is a hit.
func (s *Service) Get(ctx context.Context, orgID string) (*OrgSLA, error) {
	snap, err := s.store.Get(ctx, orgID)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, ErrSLANotFound) {
		return nil, err
	}

	responseTimes, err := s.source.ResolvedResponseTimes(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("derive sla on demand: %w", err)
	}

	computed := Compute(orgID, responseTimes, s.now())
	if err := s.store.Save(ctx, computed); err != nil {
		return nil, fmt.Errorf("store on-demand sla: %w", err)
	}
	return &computed, nil
}
