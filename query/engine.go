package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/pitwall/ai"
	"github.com/poiesic/pitwall/core"
	"github.com/poiesic/pitwall/storage"
)

// Replies used when the answerer cannot help.
const (
	AnswerFailed = "Error generating answer."
	NoAnswer     = "I could not generate an answer."
)

// Result is the outcome of a query.
type Result struct {
	TopicKey    core.TopicKey          `json:"topicKey"`
	Answer      string                 `json:"answer"`
	ContextUsed []*core.KnowledgeEntry `json:"contextUsed"`
}

// Engine answers questions from one partition at a time.
type Engine struct {
	repo       storage.PartitionRepository
	answerer   ai.Answerer
	maxContext int
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithMaxContext limits the context to the n most recently appended
// entries. Zero, the default, passes the whole partition.
func WithMaxContext(n int) Option {
	return func(e *Engine) error {
		if n < 0 {
			return fmt.Errorf("max context cannot be negative, got %d", n)
		}
		e.maxContext = n
		return nil
	}
}

// NewEngine creates a new query engine.
func NewEngine(repo storage.PartitionRepository, provider ai.AIProvider, opts ...Option) (*Engine, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		repo:     repo,
		answerer: provider.Answerer(),
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "query")

	return e, nil
}

// Query answers question from the partition for key.
func (e *Engine) Query(ctx context.Context, key core.TopicKey, question string) (*Result, error) {
	return e.QueryWithMonitor(ctx, key, question, nil)
}

// QueryWithMonitor answers question from the partition for key.
// The monitor receives callbacks at each stage of the query.
func (e *Engine) QueryWithMonitor(ctx context.Context, key core.TopicKey, question string, monitor Monitor) (*Result, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	monitor.Start(key, question)

	entries, err := e.repo.Load(ctx, key)
	if err != nil {
		e.logger.Error("error loading partition", "topic", key, "err", err)
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	if e.maxContext > 0 && len(entries) > e.maxContext {
		entries = entries[len(entries)-e.maxContext:]
	}
	monitor.AfterContextLoad(entries)

	answer, err := e.answerer.Answer(ctx, question, entries)
	switch {
	case err != nil:
		e.logger.Warn("answer generation failed", "topic", key, "err", err)
		monitor.AnswerFailed(err)
		answer = AnswerFailed
	case strings.TrimSpace(answer) == "":
		answer = NoAnswer
	}

	result := &Result{
		TopicKey:    key,
		Answer:      answer,
		ContextUsed: entries,
	}
	e.logger.Debug("answered question", "topic", key, "context", len(entries))
	monitor.Finish(result)
	return result, nil
}
