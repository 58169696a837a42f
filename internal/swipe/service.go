package swipe

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultDailyCap is the per-subject daily swipe ceiling. A soft product
// limiter, not a security boundary.
const DefaultDailyCap = 50

// Service coordinates swipe recording: the daily cap (derived from swipe
// rows so it survives restarts), pair-unique upsert, and server-enforced
// most-recent-only undo.
type Service struct {
	repo   Repository
	cache  *DailyCountCache
	cap    int
	logger *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a swipe service. cache may be nil; a zero dailyCap
// uses DefaultDailyCap.
func NewService(repo Repository, cache *DailyCountCache, dailyCap int, logger *slog.Logger) *Service {
	if dailyCap <= 0 {
		dailyCap = DefaultDailyCap
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		cap:    dailyCap,
		logger: logger,
		now:    time.Now,
	}
}

// Record validates the daily cap and writes the swipe. Returns the stored
// swipe and whether it was newly inserted (a re-swipe on the same pair
// overwrites and does not consume extra cap).
func (s *Service) Record(ctx context.Context, sw *Swipe) (*UpsertResult, error) {
	if _, err := ParseDirection(string(sw.Direction)); err != nil {
		return nil, err
	}

	now := s.now()
	count, err := s.repo.CountSince(ctx, sw.SubjectID, StartOfDay(now))
	if err != nil {
		return nil, fmt.Errorf("derive daily swipe count: %w", err)
	}
	if count >= s.cap {
		return nil, ErrDailyCapExceeded
	}

	result, err := s.repo.Upsert(ctx, sw)
	if err != nil {
		return nil, err
	}

	if result.Inserted {
		s.cache.Increment(ctx, sw.SubjectID, now)
	}
	return result, nil
}

// Undo removes the swipe only if it is the subject's most recent one;
// anything else is rejected with ErrNotLatestSwipe. The effective daily
// count drops by one because it is derived from the remaining rows.
// Whether a match survives the undo is the match state machine's concern:
// a match already past PENDING is not resurrected or reverted here.
func (s *Service) Undo(ctx context.Context, subjectID, swipeID string) (*Swipe, error) {
	latest, err := s.repo.Latest(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if latest.ID != swipeID {
		return nil, ErrNotLatestSwipe
	}

	if err := s.repo.Delete(ctx, latest.ID); err != nil {
		return nil, err
	}

	s.cache.Decrement(ctx, subjectID, s.now())
	return latest, nil
}

// TodayCount returns the subject's authoritative swipe count for today.
func (s *Service) TodayCount(ctx context.Context, subjectID string) (int, error) {
	return s.repo.CountSince(ctx, subjectID, StartOfDay(s.now()))
}

// DailyCap returns the configured ceiling.
func (s *Service) DailyCap() int {
	return s.cap
}
