// Package notify delivers match lifecycle notifications. Delivery is
// best-effort by contract: the match service logs failures and moves on.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/helpout/helpout-api/internal/match"
)

// Event names carried in the SNS message attributes.
const (
	EventMatchCreated  = "match.created"
	EventMatchAccepted = "match.accepted"
)

type matchEvent struct {
	Event       string `json:"event"`
	MatchID     string `json:"match_id"`
	VolunteerID string `json:"volunteer_id"`
	VacancyID   string `json:"vacancy_id"`
	OrgID       string `json:"org_id"`
}

// SNSNotifier publishes match events to an SNS topic.
type SNSNotifier struct {
	client   *sns.Client
	topicARN string
	logger   *slog.Logger
}

// NewSNSNotifier creates an SNS notifier using the default AWS
// credential chain.
func NewSNSNotifier(ctx context.Context, region, topicARN string, logger *slog.Logger) (*SNSNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SNSNotifier{
		client:   sns.NewFromConfig(cfg),
		topicARN: topicARN,
		logger:   logger,
	}, nil
}

// MatchCreated publishes the match.created event.
func (n *SNSNotifier) MatchCreated(ctx context.Context, m *match.Match) error {
	return n.publish(ctx, EventMatchCreated, m)
}

// MatchAccepted publishes the match.accepted event.
func (n *SNSNotifier) MatchAccepted(ctx context.Context, m *match.Match) error {
	return n.publish(ctx, EventMatchAccepted, m)
}

func (n *SNSNotifier) publish(ctx context.Context, event string, m *match.Match) error {
	payload, err := json.Marshal(matchEvent{
		Event:       event,
		MatchID:     m.ID,
		VolunteerID: m.VolunteerID,
		VacancyID:   m.VacancyID,
		OrgID:       m.OrgID,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}

	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(payload)),
	})
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event, err)
	}

	n.logger.Debug("match event published", "event", event, "match_id", m.ID)
	return nil
}

// LogNotifier writes match events to the log. Used when no SNS topic is
// configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// MatchCreated logs the match.created event.
func (n *LogNotifier) MatchCreated(ctx context.Context, m *match.Match) error {
	n.logger.Info("match created",
		"match_id", m.ID, "volunteer_id", m.VolunteerID, "vacancy_id", m.VacancyID)
	return nil
}

// MatchAccepted logs the match.accepted event.
func (n *LogNotifier) MatchAccepted(ctx context.Context, m *match.Match) error {
	n.logger.Info("match accepted",
		"match_id", m.ID, "volunteer_id", m.VolunteerID, "vacancy_id", m.VacancyID)
	return nil
}
