// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pitwall

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/pitwall/ai"
	"github.com/poiesic/pitwall/ai/llm"
	"github.com/poiesic/pitwall/core"
	"github.com/poiesic/pitwall/ingestion"
	"github.com/poiesic/pitwall/news"
	"github.com/poiesic/pitwall/query"
	"github.com/poiesic/pitwall/refresh"
	"github.com/poiesic/pitwall/storage/badger"
	"github.com/poiesic/pitwall/topics"
)

// DefaultCloseTimeout bounds how long Close waits for a background refresh.
const DefaultCloseTimeout = 30 * time.Second

// Service ties the topic router, partition store, ingestion pipeline, query
// engine and refresh driver together behind one handle.
type Service struct {
	backend   *badger.Backend
	repo      *badger.PartitionRepository
	provider  ai.AIProvider
	table     *topics.Table
	router    *topics.Router
	pipeline  *ingestion.Pipeline
	engine    *query.Engine
	refresher *refresh.Refresher
	logger    *slog.Logger

	closeTimeout time.Duration
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig     *ai.Config
	provider     ai.AIProvider
	table        *topics.Table
	source       news.Source
	inMemory     bool
	pipelineOpts []ingestion.Option
	queryOpts    []query.Option
	refreshOpts  []refresh.Option
	closeTimeout time.Duration
}

// WithAIConfig selects the language model used by the default provider.
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies a ready AI provider instead of building one from the AI config.
// The service takes ownership and closes it.
func WithProvider(provider ai.AIProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithTopics sets the tracked topic table. Default is topics.Default().
func WithTopics(table *topics.Table) ServiceOption {
	return func(o *serviceOptions) {
		o.table = table
	}
}

// WithNewsSource sets the source used for refreshes. Without one, refreshes fail
// and only pushed articles are ingested.
func WithNewsSource(source news.Source) ServiceOption {
	return func(o *serviceOptions) {
		o.source = source
	}
}

// WithInMemory keeps all partitions in memory. The data directory is ignored.
func WithInMemory() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// WithIngestionOptions passes options through to the ingestion pipeline.
func WithIngestionOptions(opts ...ingestion.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// WithQueryOptions passes options through to the query engine.
func WithQueryOptions(opts ...query.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.queryOpts = append(o.queryOpts, opts...)
	}
}

// WithRefreshOptions passes options through to the refresher.
func WithRefreshOptions(opts ...refresh.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.refreshOpts = append(o.refreshOpts, opts...)
	}
}

// WithCloseTimeout bounds how long Close waits for a background refresh
// before canceling it. Default is DefaultCloseTimeout.
func WithCloseTimeout(d time.Duration) ServiceOption {
	return func(o *serviceOptions) {
		if d > 0 {
			o.closeTimeout = d
		}
	}
}

// NewService opens the partition store in dataDir and builds every component.
func NewService(dataDir string, opts ...ServiceOption) (*Service, error) {
	// Apply options
	options := &serviceOptions{
		aiConfig:     ai.DefaultConfig(), // Default if not provided
		table:        topics.Default(),
		closeTimeout: DefaultCloseTimeout,
	}
	for _, opt := range opts {
		opt(options)
	}

	router, err := topics.NewRouter(options.table)
	if err != nil {
		return nil, err
	}

	// Open backend
	backend, err := badger.OpenBackend(dataDir, options.inMemory)
	if err != nil {
		return nil, err
	}
	repo := badger.NewPartitionRepository(backend)

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = llm.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	s := &Service{
		backend:  backend,
		repo:     repo,
		provider: provider,
		table:    options.table,
		router:   router,
		logger:   slog.Default().With("component", "service"),

		closeTimeout: options.closeTimeout,
	}

	pipelineOpts := []ingestion.Option{ingestion.WithTopics(options.table)}
	if options.source != nil {
		pipelineOpts = append(pipelineOpts, ingestion.WithSource(options.source))
	}
	s.pipeline, err = ingestion.NewPipeline(repo, provider, append(pipelineOpts, options.pipelineOpts...)...)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.engine, err = query.NewEngine(repo, provider, options.queryOpts...)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.refresher, err = refresh.NewRefresher(s.pipeline, options.table.Keys(), options.refreshOpts...)
	if err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// Close waits for a background refresh started by Refresh, then releases
// worker pools, the AI provider and the store. A refresh still running
// after the close timeout is canceled.
func (s *Service) Close() error {
	if s.refresher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.closeTimeout)
		if err := s.refresher.Shutdown(ctx); err != nil {
			s.logger.Warn("background refresh did not finish in time", "err", err)
		}
		cancel()
		s.refresher.Release()
	}
	if s.pipeline != nil {
		s.pipeline.Release()
	}

	// Close AI provider first
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.repo.Close(); err != nil {
		s.logger.Error("error closing partition repository", "err", err)
		return err
	}

	// Close backend
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (s *Service) Table() *topics.Table {
	return s.table
}

func (s *Service) Router() *topics.Router {
	return s.router
}

func (s *Service) Pipeline() *ingestion.Pipeline {
	return s.pipeline
}

func (s *Service) Engine() *query.Engine {
	return s.engine
}

func (s *Service) Refresher() *refresh.Refresher {
	return s.refresher
}

// Resolve maps a question and optional hint onto a tracked topic.
func (s *Service) Resolve(question, hint string) topics.Resolution {
	return s.router.Explain(question, hint)
}

// Answer routes question to a topic and answers it from that topic's partition.
func (s *Service) Answer(ctx context.Context, question, hint string) (*query.Result, error) {
	return s.AnswerWithMonitor(ctx, question, hint, nil)
}

// AnswerWithMonitor is Answer with hooks into each query step. A nil
// monitor observes nothing.
func (s *Service) AnswerWithMonitor(ctx context.Context, question, hint string, monitor query.Monitor) (*query.Result, error) {
	res := s.router.Explain(question, hint)
	s.logger.Info("routed question", "topic", res.TopicKey, "reason", res.String())
	return s.engine.QueryWithMonitor(ctx, res.TopicKey, question, monitor)
}

// Query answers question from the partition of a tracked topic.
func (s *Service) Query(ctx context.Context, key core.TopicKey, question string) (*query.Result, error) {
	if err := s.checkTracked(key); err != nil {
		return nil, err
	}
	return s.engine.Query(ctx, key, question)
}

// Ingest summarizes articles and appends them to a tracked topic's partition.
func (s *Service) Ingest(ctx context.Context, key core.TopicKey, articles []core.RawArticle) (int, error) {
	if err := s.checkTracked(key); err != nil {
		return 0, err
	}
	return s.pipeline.IngestArticles(ctx, key, articles)
}

// Topics lists every tracked topic with its partition size, in table order.
func (s *Service) Topics(ctx context.Context) ([]core.TopicStatus, error) {
	all := s.table.Topics()
	statuses := make([]core.TopicStatus, 0, len(all))
	for _, topic := range all {
		info, err := s.repo.Info(ctx, topic.Key)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", topic.Key, err)
		}
		statuses = append(statuses, core.TopicStatus{
			TopicKey:    topic.Key,
			DisplayName: topic.Name(),
			Entries:     info.Entries,
			LastUpdated: info.LastUpdated,
		})
	}
	return statuses, nil
}

// Refresh starts a background refresh cycle over every tracked topic.
// The cycle is not tied to ctx's lifetime.
func (s *Service) Refresh(ctx context.Context) error {
	_, err := s.refresher.Trigger(ctx)
	return err
}

func (s *Service) checkTracked(key core.TopicKey) error {
	if err := core.ValidateTopicKey(key); err != nil {
		return err
	}
	if !s.table.Contains(key) {
		return fmt.Errorf("%w: %s", topics.ErrUnknownTopic, key)
	}
	return nil
}
