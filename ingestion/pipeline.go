package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/pitwall/ai"
	"github.com/poiesic/pitwall/core"
	"github.com/poiesic/pitwall/news"
	"github.com/poiesic/pitwall/storage"
	"github.com/poiesic/pitwall/topics"
)

// Pipeline orchestrates fetching, summarizing and storing news for a topic.
type Pipeline struct {
	repo        storage.PartitionRepository
	summarizer  ai.Summarizer
	source      news.Source
	table       *topics.Table
	pool        *ants.Pool
	maxArticles int
	dedup       bool
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent summarization.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithSource sets the news source used by Fetch and Ingest.
func WithSource(source news.Source) Option {
	return func(p *Pipeline) error {
		p.source = source
		return nil
	}
}

// WithTopics sets the topic table consulted for explicit search queries.
// Topics without a query, or a pipeline without a table, use news.BuildQuery.
func WithTopics(table *topics.Table) Option {
	return func(p *Pipeline) error {
		p.table = table
		return nil
	}
}

// WithMaxArticles bounds how many articles one fetch may return.
// Default is news.DefaultLimit.
func WithMaxArticles(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return fmt.Errorf("max articles must be at least 1, got %d", n)
		}
		p.maxArticles = n
		return nil
	}
}

// WithDeduplication controls whether articles already stored for a topic
// are skipped. Default is true.
func WithDeduplication(enabled bool) Option {
	return func(p *Pipeline) error {
		p.dedup = enabled
		return nil
	}
}

// WithClock sets the time source for CreatedAt and undated articles.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) error {
		if now == nil {
			now = time.Now
		}
		p.now = now
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(repo storage.PartitionRepository, provider ai.AIProvider, opts ...Option) (*Pipeline, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repo:        repo,
		summarizer:  provider.Summarizer(),
		pool:        pool,
		maxArticles: news.DefaultLimit,
		dedup:       true,
		now:         time.Now,
		logger:      slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// QueryFor returns the news search string for key.
func (p *Pipeline) QueryFor(key core.TopicKey) string {
	if p.table != nil {
		if topic, ok := p.table.Lookup(key); ok && topic.Query != "" {
			return topic.Query
		}
	}
	return news.BuildQuery(key)
}

// Fetch retrieves candidate articles for key from the news source.
// Source failures are wrapped in ErrFetchFailed.
func (p *Pipeline) Fetch(ctx context.Context, key core.TopicKey) ([]core.RawArticle, error) {
	if p.source == nil {
		return nil, ErrSourceRequired
	}
	if err := core.ValidateTopicKey(key); err != nil {
		return nil, err
	}

	articles, err := p.source.Fetch(ctx, p.QueryFor(key), p.maxArticles)
	if err != nil {
		return nil, fmt.Errorf("%w: %s for %s: %w", ErrFetchFailed, p.source.Name(), key, err)
	}
	if len(articles) > p.maxArticles {
		articles = articles[:p.maxArticles]
	}
	p.logger.Debug("fetched articles", "topic", key, "source", p.source.Name(), "articles", len(articles))
	return articles, nil
}

// Ingest fetches, summarizes and stores news for key, returning the number
// of entries added. A failed fetch adds nothing.
func (p *Pipeline) Ingest(ctx context.Context, key core.TopicKey) (int, error) {
	articles, err := p.Fetch(ctx, key)
	if err != nil {
		return 0, err
	}
	return p.IngestArticles(ctx, key, articles)
}

// IngestArticles summarizes articles and appends them to the partition for
// key in one atomic write, one entry per article. Entry order matches article
// order. Articles with neither title nor content are stored with
// SummaryUnavailable and never reach the model.
func (p *Pipeline) IngestArticles(ctx context.Context, key core.TopicKey, articles []core.RawArticle) (int, error) {
	if err := core.ValidateTopicKey(key); err != nil {
		return 0, err
	}

	valid := append([]core.RawArticle(nil), articles...)
	if p.dedup && len(valid) > 0 {
		var err error
		valid, err = p.dropKnown(ctx, key, valid)
		if err != nil {
			return 0, err
		}
	}

	if len(valid) == 0 {
		p.logger.Debug("nothing to ingest", "topic", key)
		return 0, nil
	}

	summaries := p.summarizeAll(ctx, valid)
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	now := p.now().UTC()
	scope := core.ScopeForTopic(key)
	entries := make([]*core.KnowledgeEntry, len(valid))
	for i, article := range valid {
		timestamp := article.PublishedAt
		if timestamp.IsZero() {
			timestamp = now
		}
		entries[i] = &core.KnowledgeEntry{
			ID:        uuid.NewString(),
			TopicKey:  key,
			Scope:     scope,
			Type:      core.EntryTypeNews,
			Summary:   summaries[i],
			Source:    article.URL,
			Timestamp: timestamp.UTC(),
			CreatedAt: now,
		}
	}

	if err := p.repo.Append(ctx, key, entries...); err != nil {
		return 0, err
	}

	p.logger.Info("ingested articles", "topic", key, "added", len(entries))
	return len(entries), nil
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
