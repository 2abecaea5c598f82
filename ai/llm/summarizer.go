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

// Summarizer implements ai.Summarizer using a langchaingo model.
type Summarizer struct {
	client  llms.Model
	timeout time.Duration
	logger  *slog.Logger
}

var _ ai.Summarizer = (*Summarizer)(nil)

func newSummarizer(client llms.Model, timeout time.Duration) *Summarizer {
	return &Summarizer{
		client:  client,
		timeout: timeout,
		logger:  slog.Default().With("component", "llm-summarizer"),
	}
}

// NewSummarizer creates a summarizer using the provided configuration.
//
// Returns ai.Summarizer interface to enforce abstraction.
func NewSummarizer(config *ai.Config) (ai.Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	model, err := newModel(config)
	if err != nil {
		return nil, err
	}
	return newSummarizer(model, config.Timeout), nil
}

// Summarize condenses one article. The call is abandoned after the configured timeout.
func (s *Summarizer) Summarize(ctx context.Context, article core.RawArticle) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := llms.GenerateFromSinglePrompt(ctx, s.client, buildSummaryPrompt(article), llms.WithTemperature(0.2))
	if err != nil {
		s.logger.Warn("summary generation failed", "title", article.Title, "err", err)
		return "", fmt.Errorf("summarizing %q: %w", article.Title, err)
	}
	return cleanResponse(text), nil
}
