package match

import (
	"context"
	"log/slog"
	"time"

	"github.com/helpout/helpout-api/internal/swipe"
)

// Notifier delivers match lifecycle notifications. Delivery is
// best-effort: failures are logged, never surfaced to the caller.
type Notifier interface {
	MatchCreated(ctx context.Context, m *Match) error
	MatchAccepted(ctx context.Context, m *Match) error
}

// Greeter produces an opening message for a freshly created
// conversation. Best-effort, like Notifier.
type Greeter interface {
	Greet(ctx context.Context, m *Match, conversationID string) (string, error)
}

// SLARecomputer is notified when an organisation's response-time data
// changes. The sla package's recomputer satisfies this.
type SLARecomputer interface {
	MarkDirty(orgID string)
}

const sideEffectTimeout = 10 * time.Second

// Service drives the match lifecycle. Storage transitions are
// authoritative; notifications, greetings and SLA recomputation run
// after commit on a detached context so a slow or failing dependency
// never blocks or fails the transition itself.
type Service struct {
	repo     Repository
	notifier Notifier
	greeter  Greeter
	sla      SLARecomputer
	logger   *slog.Logger
}

// NewService creates a match service. notifier, greeter and sla may all
// be nil.
func NewService(repo Repository, notifier Notifier, greeter Greeter, sla SLARecomputer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		greeter:  greeter,
		sla:      sla,
		logger:   logger,
	}
}

// OnSwipe reacts to a recorded swipe. An interested swipe (LIKE or
// SUPER_LIKE) ensures a PENDING match exists for the pair; DISLIKE does
// nothing. Returns the match and whether it was newly created.
func (s *Service) OnSwipe(ctx context.Context, sw *swipe.Swipe, orgID string) (*Match, bool, error) {
	if !sw.Direction.Interested() {
		return nil, false, nil
	}

	m, created, err := s.repo.EnsurePending(ctx, &Match{
		VolunteerID: sw.SubjectID,
		VacancyID:   sw.CandidateID,
		OrgID:       orgID,
	})
	if err != nil {
		return nil, false, err
	}

	if created && s.notifier != nil {
		go s.notifyCreated(m)
	}
	return m, created, nil
}

// OnUndo reverses the match consequence of an undone swipe: the pair's
// match is removed only while still PENDING. A match the organisation
// already acted on stays as it is.
func (s *Service) OnUndo(ctx context.Context, sw *swipe.Swipe) error {
	if !sw.Direction.Interested() {
		return nil
	}
	return s.repo.DeletePending(ctx, sw.SubjectID, sw.CandidateID)
}

// Accept moves the match to ACCEPTED, creating its conversation
// atomically, then fires the post-accept side effects.
func (s *Service) Accept(ctx context.Context, matchID string) (*Match, *Conversation, error) {
	m, conv, err := s.repo.Accept(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}

	// Mark dirty before returning; only notification and greeting run
	// asynchronously.
	if s.sla != nil {
		s.sla.MarkDirty(m.OrgID)
	}

	go s.afterAccept(m, conv)
	return m, conv, nil
}

// Reject moves the match to REJECTED and marks the organisation dirty
// for SLA recomputation.
func (s *Service) Reject(ctx context.Context, matchID string) (*Match, error) {
	m, err := s.repo.Reject(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if s.sla != nil {
		s.sla.MarkDirty(m.OrgID)
	}
	return m, nil
}

// Complete moves an ACCEPTED match to COMPLETED.
func (s *Service) Complete(ctx context.Context, matchID string) (*Match, error) {
	return s.repo.Complete(ctx, matchID)
}

// Get returns the pair's match.
func (s *Service) Get(ctx context.Context, volunteerID, vacancyID string) (*Match, error) {
	return s.repo.GetByPair(ctx, volunteerID, vacancyID)
}

func (s *Service) notifyCreated(m *Match) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if err := s.notifier.MatchCreated(ctx, m); err != nil {
		s.logger.Warn("match created notification failed",
			"match_id", m.ID, "error", err)
	}
}

func (s *Service) afterAccept(m *Match, conv *Conversation) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if s.notifier != nil {
		if err := s.notifier.MatchAccepted(ctx, m); err != nil {
			s.logger.Warn("match accepted notification failed",
				"match_id", m.ID, "error", err)
		}
	}

	if s.greeter != nil {
		greeting, err := s.greeter.Greet(ctx, m, conv.ID)
		if err != nil {
			s.logger.Warn("conversation greeting failed",
				"match_id", m.ID, "conversation_id", conv.ID, "error", err)
			return
		}
		s.logger.Info("conversation opened",
			"conversation_id", conv.ID, "greeting_len", len(greeting))
	}
}
