package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/pitwall/core"
	"github.com/poiesic/pitwall/ingestion"
	"github.com/poiesic/pitwall/news"
	"golang.org/x/time/rate"
)

const (
	// DefaultMinDelay is the minimum spacing between two news fetches.
	DefaultMinDelay = 2 * time.Second

	// DefaultTopicTimeout bounds fetch plus storage for one topic.
	DefaultTopicTimeout = 2 * time.Minute
)

// Ingester fetches and stores news for a topic. *ingestion.Pipeline implements it.
type Ingester interface {
	Fetch(ctx context.Context, key core.TopicKey) ([]core.RawArticle, error)
	IngestArticles(ctx context.Context, key core.TopicKey, articles []core.RawArticle) (int, error)
}

// TopicResult is the outcome of refreshing a single topic.
type TopicResult struct {
	Key     core.TopicKey
	Fetched int
	Added   int
	Err     error
}

// Report summarizes one refresh cycle. Topics are in refresh order.
type Report struct {
	Started  time.Time
	Finished time.Time
	Topics   []TopicResult
}

// Added returns the number of entries stored across all topics.
func (r *Report) Added() int {
	total := 0
	for _, t := range r.Topics {
		total += t.Added
	}
	return total
}

// Failed returns the number of topics whose refresh failed.
func (r *Report) Failed() int {
	failed := 0
	for _, t := range r.Topics {
		if t.Err != nil {
			failed++
		}
	}
	return failed
}

// Refresher pulls fresh news for every tracked topic.
type Refresher struct {
	ingester     Ingester
	keys         []core.TopicKey
	limiter      *rate.Limiter
	pool         *ants.Pool
	topicTimeout time.Duration
	retry        RetryPolicy
	progress     *ProgressTracker
	running      atomic.Bool
	logger       *slog.Logger

	mu       sync.Mutex
	bgDone   chan struct{}
	bgCancel context.CancelFunc
}

// Option configures a Refresher.
type Option func(*Refresher) error

// WithMinDelay sets the minimum spacing between news fetches.
// Zero disables pacing. Default is DefaultMinDelay.
func WithMinDelay(d time.Duration) Option {
	return func(r *Refresher) error {
		if d < 0 {
			return fmt.Errorf("min delay must not be negative, got %s", d)
		}
		if d == 0 {
			r.limiter = rate.NewLimiter(rate.Inf, 1)
			return nil
		}
		r.limiter = rate.NewLimiter(rate.Every(d), 1)
		return nil
	}
}

// WithTopicTimeout bounds the fetch and store of a single topic.
// Default is DefaultTopicTimeout.
func WithTopicTimeout(d time.Duration) Option {
	return func(r *Refresher) error {
		if d <= 0 {
			return fmt.Errorf("topic timeout must be positive, got %s", d)
		}
		r.topicTimeout = d
		return nil
	}
}

// WithRetryPolicy sets how failed fetches are retried.
// Default is DefaultRetryPolicy().
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(r *Refresher) error {
		if policy.MaxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		r.retry = policy
		return nil
	}
}

// WithWorkers sets how many topics may be summarized and stored concurrently.
// Default is 2.
func WithWorkers(n int) Option {
	return func(r *Refresher) error {
		if n < 1 {
			n = 1
		}
		if r.pool != nil {
			r.pool.Release()
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithProgress reports per-topic progress to tracker.
func WithProgress(tracker *ProgressTracker) Option {
	return func(r *Refresher) error {
		r.progress = tracker
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Refresher) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRefresher creates a refresher over keys. Keys are refreshed in the order given.
func NewRefresher(ingester Ingester, keys []core.TopicKey, opts ...Option) (*Refresher, error) {
	if ingester == nil {
		return nil, ErrIngesterRequired
	}
	if len(keys) == 0 {
		return nil, ErrNoTopics
	}

	pool, err := ants.NewPool(2)
	if err != nil {
		return nil, err
	}

	r := &Refresher{
		ingester:     ingester,
		keys:         append([]core.TopicKey(nil), keys...),
		limiter:      rate.NewLimiter(rate.Every(DefaultMinDelay), 1),
		pool:         pool,
		topicTimeout: DefaultTopicTimeout,
		retry:        DefaultRetryPolicy(),
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(r); optErr != nil {
			r.Release()
			return nil, optErr
		}
	}
	r.logger = r.logger.With("component", "refresh")

	return r, nil
}

// Keys returns the topics refreshed by each cycle.
func (r *Refresher) Keys() []core.TopicKey {
	return append([]core.TopicKey(nil), r.keys...)
}

// Running reports whether a cycle is in progress.
func (r *Refresher) Running() bool {
	return r.running.Load()
}

// RefreshAll runs one cycle over every topic and waits for it to finish.
// Per-topic failures are recorded in the report, not returned. The returned
// error is ErrCycleRunning if another cycle is in progress, or the context
// error if ctx ended before all topics were fetched.
func (r *Refresher) RefreshAll(ctx context.Context) (*Report, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrCycleRunning
	}
	defer r.running.Store(false)
	return r.runCycle(ctx)
}

// runCycle does the work of RefreshAll. The caller must hold the running flag.
func (r *Refresher) runCycle(ctx context.Context) (*Report, error) {
	report := &Report{
		Started: time.Now(),
		Topics:  make([]TopicResult, len(r.keys)),
	}
	if r.progress != nil {
		r.progress.Start(len(r.keys))
		defer r.progress.Finish()
	}
	r.logger.Info("refresh cycle started", "topics", len(r.keys))

	var wg sync.WaitGroup
	var cycleErr error
	attempted := len(r.keys)
	for i, key := range r.keys {
		result := &report.Topics[i]
		result.Key = key

		topicCtx, cancel := context.WithTimeout(ctx, r.topicTimeout)
		articles, err := r.fetch(topicCtx, key)
		if err != nil {
			cancel()
			result.Err = err
			r.done(result)
			if ctxErr := ctx.Err(); ctxErr != nil {
				cycleErr = ctxErr
				attempted = i + 1
				break
			}
			r.logger.Warn("topic fetch failed", "topic", key, "error", err)
			continue
		}
		result.Fetched = len(articles)

		wg.Add(1)
		task := func() {
			defer wg.Done()
			defer cancel()
			result.Added, result.Err = r.ingester.IngestArticles(topicCtx, key, articles)
			if result.Err != nil {
				r.logger.Warn("topic ingest failed", "topic", key, "error", result.Err)
			}
			r.done(result)
		}
		if submitErr := r.pool.Submit(task); submitErr != nil {
			task()
		}
	}
	wg.Wait()

	report.Topics = report.Topics[:attempted]
	report.Finished = time.Now()
	r.logger.Info("refresh cycle finished",
		"added", report.Added(),
		"failed", report.Failed(),
		"elapsed", report.Finished.Sub(report.Started))

	return report, cycleErr
}

// RefreshTopic fetches and stores news for a single topic, with the same
// timeout, retry and pacing rules as a full cycle.
func (r *Refresher) RefreshTopic(ctx context.Context, key core.TopicKey) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.topicTimeout)
	defer cancel()

	articles, err := r.fetch(ctx, key)
	if err != nil {
		return 0, err
	}
	return r.ingester.IngestArticles(ctx, key, articles)
}

// Trigger starts a cycle in the background. The cycle outlives ctx's
// cancellation but keeps its values; only Shutdown stops it early.
// Returns ErrCycleRunning without starting anything if a cycle is
// already in progress.
func (r *Refresher) Trigger(ctx context.Context) (<-chan *Report, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrCycleRunning
	}

	detached, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	r.mu.Lock()
	r.bgDone = done
	r.bgCancel = cancel
	r.mu.Unlock()

	out := make(chan *Report, 1)
	go func() {
		defer close(done)
		defer cancel()
		defer close(out)

		report, err := r.runCycle(detached)
		r.running.Store(false)
		if err != nil {
			r.logger.Warn("background refresh failed", "error", err)
		}
		out <- report
	}()
	return out, nil
}

// Shutdown waits for the cycle started by the last Trigger to finish.
// If ctx ends first, the cycle is canceled and Shutdown waits for it to
// stop before returning ctx's error.
func (r *Refresher) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	done, cancel := r.bgDone, r.bgCancel
	r.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
	}
	r.logger.Warn("canceling background refresh", "error", ctx.Err())
	cancel()
	<-done
	return ctx.Err()
}

// Release frees the worker pool.
func (r *Refresher) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

func (r *Refresher) fetch(ctx context.Context, key core.TopicKey) ([]core.RawArticle, error) {
	var articles []core.RawArticle
	err := RetryWithBackoff(ctx, r.retry, func(ctx context.Context) error {
		// Every attempt is paced, retries included.
		if err := r.limiter.Wait(ctx); err != nil {
			return Permanent(err)
		}
		fetched, err := r.ingester.Fetch(ctx, key)
		if err != nil {
			if isPermanent(err) {
				return Permanent(err)
			}
			return err
		}
		articles = fetched
		return nil
	})
	return articles, err
}

func (r *Refresher) done(result *TopicResult) {
	if r.progress != nil {
		r.progress.TopicDone(result.Key, result.Added, result.Err)
	}
}

// isPermanent reports fetch failures that a retry cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, ingestion.ErrSourceRequired) ||
		errors.Is(err, core.ErrInvalidTopicKey) ||
		errors.Is(err, news.ErrMissingAPIKey) ||
		errors.Is(err, news.ErrEmptyQuery)
}
