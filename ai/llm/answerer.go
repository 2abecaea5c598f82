package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/pitwall/ai"
	"github.com/poiesic/pitwall/core"
	"github.com/tmc/langchaingo/llms"
)

// Answerer implements ai.Answerer using a langchaingo chat model.
type Answerer struct {
	client  llms.Model
	timeout time.Duration
	logger  *slog.Logger
}

var _ ai.Answerer = (*Answerer)(nil)

func newAnswerer(client llms.Model, timeout time.Duration) *Answerer {
	return &Answerer{
		client:  client,
		timeout: timeout,
		logger:  slog.Default().With("component", "llm-answerer"),
	}
}

// NewAnswerer creates an answerer using the provided configuration.
//
// Returns ai.Answerer interface to enforce abstraction.
func NewAnswerer(config *ai.Config) (ai.Answerer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	model, err := newModel(config)
	if err != nil {
		return nil, err
	}
	return newAnswerer(model, config.Timeout), nil
}

// Answer sends the grounding instruction and entries as the system message
// and the question as the user message.
func (a *Answerer) Answer(ctx context.Context, question string, entries []*core.KnowledgeEntry) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, buildAnswerSystemPrompt(entries)),
		llms.TextParts(llms.ChatMessageTypeHuman, question),
	}

	response, err := a.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		a.logger.Error("failed to generate answer", "entries", len(entries), "err", err)
		return "", fmt.Errorf("answering question: %w", err)
	}
	if len(response.Choices) < 1 {
		a.logger.Debug("no choices returned from model")
		return "", nil
	}
	return cleanResponse(response.Choices[0].Content), nil
}
