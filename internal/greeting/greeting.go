// Package greeting produces the opening message for a freshly accepted
// match's conversation.
package greeting

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/helpout/helpout-api/internal/match"
)

const (
	greetingModel     = "gpt-4o-mini"
	greetingMaxTokens = 120

	systemPrompt = "You write a single short, warm opening message for a chat " +
		"between a volunteer and a volunteering organisation that just matched. " +
		"Address both parties, mention the opportunity, and invite them to plan " +
		"a first meeting. No emojis, at most two sentences."
)

// OpenAIGenerator asks a chat model for a tailored greeting.
type OpenAIGenerator struct {
	client *openai.Client
}

// NewOpenAIGenerator creates a generator with the given API key.
func NewOpenAIGenerator(apiKey string) *OpenAIGenerator {
	return &OpenAIGenerator{client: openai.NewClient(apiKey)}
}

// Greet generates the opening message for the conversation.
func (g *OpenAIGenerator) Greet(ctx context.Context, m *match.Match, conversationID string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     greetingModel,
		MaxTokens: greetingMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Volunteer %s matched with vacancy %s of organisation %s.",
					m.VolunteerID, m.VacancyID, m.OrgID),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai greeting: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai greeting: empty response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai greeting: blank message")
	}
	return text, nil
}

// StaticGenerator returns a fixed greeting. Used when no API key is
// configured, and as the fallback the caller can swap in.
type StaticGenerator struct{}

// NewStaticGenerator creates the static generator.
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

// Greet returns the fixed opening message.
func (g *StaticGenerator) Greet(ctx context.Context, m *match.Match, conversationID string) (string, error) {
	return "You matched! Say hello and plan your first meeting together.", nil
}
