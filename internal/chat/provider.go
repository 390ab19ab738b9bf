package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// Classified generation failures. The orchestrator maps each to one
// fixed user-facing message; the HTTP layer maps each to a status.
var (
	ErrConfiguration = errors.New("generation service is not configured")
	ErrUnavailable   = errors.New("generation service is temporarily unavailable")
	ErrEmptyReply    = errors.New("generation service returned no usable reply")
)

// Generator is the text-generation collaborator boundary. It takes the
// rendered system context plus the running transcript and returns the
// raw reply text.
type Generator interface {
	Generate(ctx context.Context, systemContext string, transcript []Message) (string, error)
}

// LLMGenerator adapts a langchaingo model to the Generator contract.
type LLMGenerator struct {
	model       llms.Model
	temperature float64
	maxTokens   int
}

// LLMOption configures an LLMGenerator.
type LLMOption func(*LLMGenerator)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) LLMOption {
	return func(g *LLMGenerator) { g.temperature = t }
}

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int) LLMOption {
	return func(g *LLMGenerator) { g.maxTokens = n }
}

// NewLLMGenerator wraps a langchaingo model.
func NewLLMGenerator(model llms.Model, opts ...LLMOption) *LLMGenerator {
	g := &LLMGenerator{
		model:       model,
		temperature: 0.7,
		maxTokens:   500,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate sends the conversation to the model. System messages from
// the transcript are dropped; the freshly built context is the only
// system message.
func (g *LLMGenerator) Generate(ctx context.Context, systemContext string, transcript []Message) (string, error) {
	if g.model == nil {
		return "", ErrConfiguration
	}
	if len(transcript) == 0 {
		return "", fmt.Errorf("empty transcript")
	}

	messages := make([]llms.MessageContent, 0, len(transcript)+1)
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, systemContext))
	for _, msg := range transcript {
		switch msg.Role {
		case RoleSystem:
			continue
		case RoleAssistant:
			messages = append(messages, llms.TextParts(schema.ChatMessageTypeAI, msg.Content))
		default:
			messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, msg.Content))
		}
	}

	response, err := g.model.GenerateContent(ctx, messages,
		llms.WithTemperature(g.temperature),
		llms.WithMaxTokens(g.maxTokens),
	)
	if err != nil {
		return "", classifyGenerateError(err)
	}

	if response == nil || len(response.Choices) == 0 || response.Choices[0].Content == "" {
		return "", ErrEmptyReply
	}

	return response.Choices[0].Content, nil
}

// classifyGenerateError folds provider errors into the fixed taxonomy.
func classifyGenerateError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") ||
		strings.Contains(msg, "unavailable") || strings.Contains(msg, "503"):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return fmt.Errorf("failed to generate reply: %w", err)
	}
}

// UnconfiguredGenerator is used when no API key is present; every turn
// resolves to the configuration fallback message.
type UnconfiguredGenerator struct{}

func (UnconfiguredGenerator) Generate(context.Context, string, []Message) (string, error) {
	return "", ErrConfiguration
}
