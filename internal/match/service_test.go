package match

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/helpout/helpout-api/internal/swipe"
)

type recordingNotifier struct {
	mu       sync.Mutex
	created  []string
	accepted []string
	err      error
	done     chan struct{}
}

func (n *recordingNotifier) MatchCreated(ctx context.Context, m *Match) error {
	n.mu.Lock()
	n.created = append(n.created, m.ID)
	n.mu.Unlock()
	if n.done != nil {
		n.done <- struct{}{}
	}
	return n.err
}

func (n *recordingNotifier) MatchAccepted(ctx context.Context, m *Match) error {
	n.mu.Lock()
	n.accepted = append(n.accepted, m.ID)
	n.mu.Unlock()
	if n.done != nil {
		n.done <- struct{}{}
	}
	return n.err
}

type recordingSLA struct {
	mu   sync.Mutex
	orgs []string
}

func (r *recordingSLA) MarkDirty(orgID string) {
	r.mu.Lock()
	r.orgs = append(r.orgs, orgID)
	r.mu.Unlock()
}

func (r *recordingSLA) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orgs)
}

func interestedSwipe(subject, candidate string) *swipe.Swipe {
	return &swipe.Swipe{
		SubjectID:   subject,
		CandidateID: candidate,
		Direction:   swipe.DirectionLike,
	}
}

// TestOnSwipeCreatesPendingOnce verifies an interested swipe creates at
// most one PENDING match per pair.
func TestOnSwipeCreatesPendingOnce(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, nil, nil, nil)
	ctx := context.Background()

	m, created, err := svc.OnSwipe(ctx, interestedSwipe("vol-1", "vac-1"), "org-1")
	if err != nil {
		t.Fatalf("first swipe: %v", err)
	}
	if !created {
		t.Error("expected first swipe to create the match")
	}
	if m.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", m.Status)
	}

	again, created, err := svc.OnSwipe(ctx, interestedSwipe("vol-1", "vac-1"), "org-1")
	if err != nil {
		t.Fatalf("second swipe: %v", err)
	}
	if created {
		t.Error("expected second swipe to reuse the match")
	}
	if again.ID != m.ID {
		t.Errorf("expected same match, got %s and %s", m.ID, again.ID)
	}
}

// TestOnSwipeDislikeNoMatch verifies DISLIKE never creates a match.
func TestOnSwipeDislikeNoMatch(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, nil, nil, nil)

	m, created, err := svc.OnSwipe(context.Background(), &swipe.Swipe{
		SubjectID: "vol-1", CandidateID: "vac-1", Direction: swipe.DirectionDislike,
	}, "org-1")
	if err != nil {
		t.Fatalf("dislike: %v", err)
	}
	if m != nil || created {
		t.Error("dislike must not create a match")
	}
}

// TestAcceptCreatesConversation verifies acceptance stamps StartedAt,
// resolves the match, and opens a conversation linked to it.
func TestAcceptCreatesConversation(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	m, _, err := svc.OnSwipe(ctx, interestedSwipe("vol-1", "vac-1"), "org-1")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	accepted, conv, err := svc.Accept(ctx, m.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != StatusAccepted {
		t.Errorf("expected ACCEPTED, got %s", accepted.Status)
	}
	if accepted.StartedAt == nil {
		t.Error("expected StartedAt to be stamped")
	}
	if accepted.ResolvedAt == nil {
		t.Error("expected ResolvedAt to be stamped")
	}
	if conv == nil || conv.MatchID != m.ID {
		t.Fatalf("expected conversation for match %s, got %+v", m.ID, conv)
	}
	if accepted.ConversationID == nil || *accepted.ConversationID != conv.ID {
		t.Error("expected match to reference its conversation")
	}
}

// TestStartedAtStampedOnce verifies StartedAt survives as-is once set.
func TestStartedAtStampedOnce(t *testing.T) {
	repo := NewInMemoryRepository()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return base }

	ctx := context.Background()
	m, _, err := repo.EnsurePending(ctx, &Match{
		VolunteerID: "vol-1", VacancyID: "vac-1", OrgID: "org-1",
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	accepted, _, err := repo.Accept(ctx, m.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	firstStart := *accepted.StartedAt

	repo.now = func() time.Time { return base.Add(48 * time.Hour) }
	completed, err := repo.Complete(ctx, m.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !completed.StartedAt.Equal(firstStart) {
		t.Errorf("StartedAt changed: %v -> %v", firstStart, completed.StartedAt)
	}
}

// TestTerminalStatesNeverRevert verifies resolved matches reject further
// resolution attempts.
func TestTerminalStatesNeverRevert(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected", func(t *testing.T) {
		repo := NewInMemoryRepository()
		svc := NewService(repo, nil, nil, nil, nil)
		m, _, _ := svc.OnSwipe(ctx, interestedSwipe("vol-1", "vac-1"), "org-1")
		if _, err := svc.Reject(ctx, m.ID); err != nil {
			t.Fatalf("reject: %v", err)
		}

		if _, _, err := svc.Accept(ctx, m.ID); !errors.Is(err, ErrTerminalState) {
			t.Errorf("accept after reject: expected ErrTerminalState, got %v", err)
		}
		if _, err := svc.Reject(ctx, m.ID); !errors.Is(err, ErrTerminalState) {
			t.Errorf("double reject: expected ErrTerminalState, got %v", err)
		}
	})

	t.Run("completed", func(t *testing.T) {
		repo := NewInMemoryRepository()
		svc := NewService(repo, nil, nil, nil, nil)
		m, _, _ := svc.OnSwipe(ctx, interestedSwipe("vol-1", "vac-1"), "org-1")
		if _, _, err := svc.Accept(ctx, m.ID); err != nil {
			t.Fatalf("accept: %v", err)
		}
		if _, err := svc.Complete(ctx, m.ID); err != nil {
			t.Fatalf("complete: %v", err)
		}

		if _, err := svc.Complete(ctx, m.ID); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("double complete: expected ErrInvalidTransition, got %v", err)
		}
		if _, err := svc.Reject(ctx, m.ID); !errors.Is(err, ErrTerminalState) {
			t.Errorf("reject after complete: expected ErrTerminalState, got %v", err)
		}
	})

	t.Run("pending cannot complete", func(t *testing.T) {
		repo := NewInMemoryRepository()
		svc := NewService(repo, nil, nil, nil, nil)
		m, _, _ := svc.OnSwipe(ctx, interestedSwipe("vol-1", "vac-1"), "org-1")

		if _, err := svc.Complete(ctx, m.ID); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

// TestFailingNotifierDoesNotFailAccept verifies notification errors are
// swallowed and the transition commits regardless.
func TestFailingNotifierDoesNotFailAccept(t *testing.T) {
	repo := NewInMemoryRepository()
	notifier := &recordingNotifier{
		err:  errors.New("sns unavailable"),
		done: make(chan struct{}, 2),
	}
	svc := NewService(repo, notifier, nil, nil, nil)
	ctx := context.Background()

	m, _, err := svc.OnSwipe(ctx, interestedSwipe("vol-1", "vac-1"), "org-1")
	if err != nil {
		t.Fatalf("swipe: %v", err)
	}
	<-notifier.done // created notification

	accepted, conv, err := svc.Accept(ctx, m.ID)
	if err != nil {
		t.Fatalf("accept must not fail on notifier error: %v", err)
	}
	if accepted.Status != StatusAccepted || conv == nil {
		t.Error("expected a committed acceptance despite notifier failure")
	}
	<-notifier.done // accepted notification, fired after commit

	stored, err := svc.Get(ctx, "vol-1", "vac-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != StatusAccepted {
		t.Errorf("stored status %s, want ACCEPTED", stored.Status)
	}
}

// TestResolutionMarksOrgDirty verifies accept and reject both trigger SLA
// recomputation for the organisation.
func TestResolutionMarksOrgDirty(t *testing.T) {
	repo := NewInMemoryRepository()
	sla := &recordingSLA{}
	svc := NewService(repo, nil, nil, sla, nil)
	ctx := context.Background()

	m1, _, _ := svc.OnSwipe(ctx, interestedSwipe("vol-1", "vac-1"), "org-1")
	m2, _, _ := svc.OnSwipe(ctx, interestedSwipe("vol-2", "vac-2"), "org-1")

	if _, _, err := svc.Accept(ctx, m1.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := svc.Reject(ctx, m2.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if got := sla.count(); got != 2 {
		t.Errorf("expected 2 dirty marks, got %d", got)
	}
}

// TestUndoRemovesOnlyPendingMatch verifies an undone swipe deletes a
// PENDING match but never touches one the organisation acted on.
func TestUndoRemovesOnlyPendingMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("pending is removed", func(t *testing.T) {
		svc := NewService(NewInMemoryRepository(), nil, nil, nil, nil)
		sw := interestedSwipe("vol-1", "vac-1")
		if _, _, err := svc.OnSwipe(ctx, sw, "org-1"); err != nil {
			t.Fatalf("swipe: %v", err)
		}

		if err := svc.OnUndo(ctx, sw); err != nil {
			t.Fatalf("undo: %v", err)
		}
		if _, err := svc.Get(ctx, "vol-1", "vac-1"); !errors.Is(err, ErrMatchNotFound) {
			t.Errorf("expected match gone, got %v", err)
		}
	})

	t.Run("accepted survives", func(t *testing.T) {
		svc := NewService(NewInMemoryRepository(), nil, nil, nil, nil)
		sw := interestedSwipe("vol-1", "vac-1")
		m, _, err := svc.OnSwipe(ctx, sw, "org-1")
		if err != nil {
			t.Fatalf("swipe: %v", err)
		}
		if _, _, err := svc.Accept(ctx, m.ID); err != nil {
			t.Fatalf("accept: %v", err)
		}

		if err := svc.OnUndo(ctx, sw); err != nil {
			t.Fatalf("undo: %v", err)
		}
		stored, err := svc.Get(ctx, "vol-1", "vac-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if stored.Status != StatusAccepted {
			t.Errorf("accepted match reverted to %s", stored.Status)
		}
	})
}

// TestResolvedResponseTimes verifies the SLA input covers only the
// organisation's accepted matches; rejections and pending matches stay
// out of the average.
func TestResolvedResponseTimes(t *testing.T) {
	repo := NewInMemoryRepository()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return base }
	ctx := context.Background()

	m1, _, _ := repo.EnsurePending(ctx, &Match{VolunteerID: "vol-1", VacancyID: "vac-1", OrgID: "org-1"})
	m2, _, _ := repo.EnsurePending(ctx, &Match{VolunteerID: "vol-2", VacancyID: "vac-2", OrgID: "org-1"})
	rejected, _, _ := repo.EnsurePending(ctx, &Match{VolunteerID: "vol-3", VacancyID: "vac-3", OrgID: "org-1"})
	repo.EnsurePending(ctx, &Match{VolunteerID: "vol-5", VacancyID: "vac-5", OrgID: "org-1"})
	other, _, _ := repo.EnsurePending(ctx, &Match{VolunteerID: "vol-4", VacancyID: "vac-4", OrgID: "org-2"})

	repo.now = func() time.Time { return base.Add(6 * time.Hour) }
	repo.Accept(ctx, m1.ID)
	repo.now = func() time.Time { return base.Add(30 * time.Hour) }
	repo.Accept(ctx, m2.ID)
	repo.now = func() time.Time { return base.Add(50 * time.Hour) }
	repo.Reject(ctx, rejected.ID)
	repo.Accept(ctx, other.ID)

	durations, err := repo.ResolvedResponseTimes(ctx, "org-1")
	if err != nil {
		t.Fatalf("response times: %v", err)
	}
	if len(durations) != 2 {
		t.Fatalf("expected 2 durations, got %d", len(durations))
	}

	want := map[time.Duration]bool{6 * time.Hour: true, 30 * time.Hour: true}
	for _, d := range durations {
		if !want[d] {
			t.Errorf("unexpected duration %v", d)
		}
	}
}
