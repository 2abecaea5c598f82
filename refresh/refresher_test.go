package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/pitwall/ai/mock"
	"github.com/poiesic/pitwall/core"
	"github.com/poiesic/pitwall/ingestion"
	"github.com/poiesic/pitwall/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIngester implements Ingester for testing.
type fakeIngester struct {
	mu         sync.Mutex
	fetchErrs  map[core.TopicKey]error
	fetchTimes []time.Time
	fetchCalls map[core.TopicKey]int
	ingested   []core.TopicKey
	fetchFunc  func(ctx context.Context, key core.TopicKey) ([]core.RawArticle, error)
	ingestFunc func(ctx context.Context, key core.TopicKey) error
}

func newFakeIngester() *fakeIngester {
	return &fakeIngester{
		fetchErrs:  make(map[core.TopicKey]error),
		fetchCalls: make(map[core.TopicKey]int),
	}
}

func (f *fakeIngester) Fetch(ctx context.Context, key core.TopicKey) ([]core.RawArticle, error) {
	f.mu.Lock()
	f.fetchTimes = append(f.fetchTimes, time.Now())
	f.fetchCalls[key]++
	err := f.fetchErrs[key]
	fn := f.fetchFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, key)
	}
	if err != nil {
		return nil, err
	}
	return []core.RawArticle{
		{Title: string(key) + " one"},
		{Title: string(key) + " two"},
	}, nil
}

func (f *fakeIngester) IngestArticles(ctx context.Context, key core.TopicKey, articles []core.RawArticle) (int, error) {
	f.mu.Lock()
	fn := f.ingestFunc
	f.mu.Unlock()

	if fn != nil {
		if err := fn(ctx, key); err != nil {
			return 0, err
		}
	}

	f.mu.Lock()
	f.ingested = append(f.ingested, key)
	f.mu.Unlock()
	return len(articles), nil
}

func (f *fakeIngester) calls(key core.TopicKey) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls[key]
}

var testKeys = []core.TopicKey{"season_2025", "team_ferrari", "driver_hamilton"}

func newTestRefresher(t *testing.T, ingester Ingester, opts ...Option) *Refresher {
	t.Helper()
	defaults := []Option{
		WithMinDelay(0),
		WithRetryPolicy(fastPolicy(2)),
	}
	r, err := NewRefresher(ingester, testKeys, append(defaults, opts...)...)
	require.NoError(t, err)
	t.Cleanup(r.Release)
	return r
}

func TestNewRefresher_Errors(t *testing.T) {
	_, err := NewRefresher(nil, testKeys)
	assert.ErrorIs(t, err, ErrIngesterRequired)

	_, err = NewRefresher(newFakeIngester(), nil)
	assert.ErrorIs(t, err, ErrNoTopics)

	_, err = NewRefresher(newFakeIngester(), testKeys, WithMinDelay(-time.Second))
	assert.Error(t, err)

	_, err = NewRefresher(newFakeIngester(), testKeys, WithTopicTimeout(0))
	assert.Error(t, err)

	_, err = NewRefresher(newFakeIngester(), testKeys, WithRetryPolicy(RetryPolicy{}))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestRefresher_RefreshAll(t *testing.T) {
	ingester := newFakeIngester()
	r := newTestRefresher(t, ingester)

	report, err := r.RefreshAll(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Topics, 3)
	for i, key := range testKeys {
		assert.Equal(t, key, report.Topics[i].Key)
		assert.Equal(t, 2, report.Topics[i].Fetched)
		assert.Equal(t, 2, report.Topics[i].Added)
		assert.NoError(t, report.Topics[i].Err)
	}
	assert.Equal(t, 6, report.Added())
	assert.Zero(t, report.Failed())
	assert.False(t, report.Finished.Before(report.Started))
	assert.ElementsMatch(t, testKeys, ingester.ingested)
	assert.False(t, r.Running())
}

func TestRefresher_FailingTopicIsIsolated(t *testing.T) {
	ingester := newFakeIngester()
	ingester.fetchErrs["team_ferrari"] = errors.New("upstream 503")
	r := newTestRefresher(t, ingester, WithRetryPolicy(fastPolicy(3)))

	report, err := r.RefreshAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 4, report.Added())
	assert.EqualError(t, report.Topics[1].Err, "upstream 503")
	assert.Equal(t, 3, ingester.calls("team_ferrari"), "transient failures are retried")
	assert.Equal(t, 1, ingester.calls("driver_hamilton"))
}

func TestRefresher_PermanentFailureNotRetried(t *testing.T) {
	ingester := newFakeIngester()
	ingester.fetchErrs["team_ferrari"] = fmt.Errorf("wrapped: %w", ingestion.ErrSourceRequired)
	r := newTestRefresher(t, ingester, WithRetryPolicy(fastPolicy(5)))

	report, err := r.RefreshAll(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, report.Topics[1].Err, ingestion.ErrSourceRequired)
	assert.Equal(t, 1, ingester.calls("team_ferrari"))
}

func TestRefresher_PacesFetches(t *testing.T) {
	ingester := newFakeIngester()
	r := newTestRefresher(t, ingester, WithMinDelay(40*time.Millisecond))

	_, err := r.RefreshAll(context.Background())
	require.NoError(t, err)

	require.Len(t, ingester.fetchTimes, 3)
	for i := 1; i < len(ingester.fetchTimes); i++ {
		gap := ingester.fetchTimes[i].Sub(ingester.fetchTimes[i-1])
		assert.GreaterOrEqual(t, gap, 30*time.Millisecond, "fetch %d came too soon", i)
	}
}

func TestRefresher_RetriesArePaced(t *testing.T) {
	ingester := newFakeIngester()
	failures := 0
	ingester.fetchFunc = func(ctx context.Context, key core.TopicKey) ([]core.RawArticle, error) {
		if key == testKeys[0] && failures < 2 {
			failures++
			return nil, errors.New("upstream unavailable")
		}
		return []core.RawArticle{{Title: "x"}}, nil
	}
	r := newTestRefresher(t, ingester,
		WithMinDelay(50*time.Millisecond),
		WithRetryPolicy(RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}))

	report, err := r.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Failed())
	assert.Equal(t, 3, ingester.calls(testKeys[0]))

	require.Len(t, ingester.fetchTimes, 5)
	for i := 1; i < len(ingester.fetchTimes); i++ {
		gap := ingester.fetchTimes[i].Sub(ingester.fetchTimes[i-1])
		assert.GreaterOrEqual(t, gap, 40*time.Millisecond, "fetch %d came too soon", i)
	}
}

func TestRefresher_SlowIngestDoesNotDelayFetches(t *testing.T) {
	ingester := newFakeIngester()
	allFetched := make(chan struct{})
	var once sync.Once
	ingester.fetchFunc = func(ctx context.Context, key core.TopicKey) ([]core.RawArticle, error) {
		if key == testKeys[len(testKeys)-1] {
			once.Do(func() { close(allFetched) })
		}
		return []core.RawArticle{{Title: "x"}}, nil
	}
	ingester.ingestFunc = func(ctx context.Context, key core.TopicKey) error {
		select {
		case <-allFetched:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("ingest ran before all fetches")
		}
	}
	r := newTestRefresher(t, ingester, WithWorkers(len(testKeys)))

	report, err := r.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Failed())
	assert.Equal(t, 3, report.Added())
}

func TestRefresher_TopicTimeout(t *testing.T) {
	ingester := newFakeIngester()
	ingester.fetchFunc = func(ctx context.Context, key core.TopicKey) ([]core.RawArticle, error) {
		if key == "team_ferrari" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []core.RawArticle{{Title: "x"}}, nil
	}
	r := newTestRefresher(t, ingester, WithTopicTimeout(20*time.Millisecond))

	report, err := r.RefreshAll(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, report.Topics[1].Err, context.DeadlineExceeded)
	assert.NoError(t, report.Topics[2].Err)
}

func TestRefresher_CanceledContext(t *testing.T) {
	ingester := newFakeIngester()
	r := newTestRefresher(t, ingester)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := r.RefreshAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Len(t, report.Topics, 1)
	assert.Zero(t, ingester.calls("season_2025"))
}

func TestRefresher_RejectsOverlappingCycles(t *testing.T) {
	ingester := newFakeIngester()
	release := make(chan struct{})
	started := make(chan struct{}, len(testKeys))
	ingester.ingestFunc = func(ctx context.Context, key core.TopicKey) error {
		started <- struct{}{}
		<-release
		return nil
	}
	r := newTestRefresher(t, ingester, WithWorkers(len(testKeys)))

	done := make(chan error, 1)
	go func() {
		_, err := r.RefreshAll(context.Background())
		done <- err
	}()
	<-started

	assert.True(t, r.Running())
	_, err := r.RefreshAll(context.Background())
	assert.ErrorIs(t, err, ErrCycleRunning)
	_, err = r.Trigger(context.Background())
	assert.ErrorIs(t, err, ErrCycleRunning)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, r.Running())
}

func TestRefresher_TriggerOutlivesCaller(t *testing.T) {
	ingester := newFakeIngester()
	r := newTestRefresher(t, ingester, WithMinDelay(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	reports, err := r.Trigger(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case report := <-reports:
		require.NotNil(t, report)
		assert.Len(t, report.Topics, 3)
		assert.Zero(t, report.Failed())
	case <-time.After(5 * time.Second):
		t.Fatal("background refresh did not finish")
	}
}

func TestRefresher_ConcurrentTriggersStartOneCycle(t *testing.T) {
	ingester := newFakeIngester()
	release := make(chan struct{})
	ingester.ingestFunc = func(ctx context.Context, key core.TopicKey) error {
		<-release
		return nil
	}
	r := newTestRefresher(t, ingester, WithWorkers(len(testKeys)))

	const callers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	var started []<-chan *Report
	rejected := 0
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports, err := r.Trigger(context.Background())
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, ErrCycleRunning)
				rejected++
				return
			}
			started = append(started, reports)
		}()
	}
	wg.Wait()
	close(release)

	require.Len(t, started, 1)
	assert.Equal(t, callers-1, rejected)
	report := <-started[0]
	require.NotNil(t, report)
	assert.Len(t, report.Topics, 3)
	assert.Equal(t, 1, ingester.calls("team_ferrari"))
}

func TestRefresher_ShutdownWaitsForTrigger(t *testing.T) {
	ingester := newFakeIngester()
	ingester.ingestFunc = func(ctx context.Context, key core.TopicKey) error {
		time.Sleep(30 * time.Millisecond)
		return nil
	}
	r := newTestRefresher(t, ingester)

	require.NoError(t, r.Shutdown(context.Background()))

	_, err := r.Trigger(context.Background())
	require.NoError(t, err)
	require.NoError(t, r.Shutdown(context.Background()))

	assert.False(t, r.Running())
	ingester.mu.Lock()
	defer ingester.mu.Unlock()
	assert.Len(t, ingester.ingested, 3)
}

func TestRefresher_ShutdownCancelsAfterDeadline(t *testing.T) {
	ingester := newFakeIngester()
	ingester.ingestFunc = func(ctx context.Context, key core.TopicKey) error {
		<-ctx.Done()
		return ctx.Err()
	}
	r := newTestRefresher(t, ingester, WithWorkers(len(testKeys)))

	reports, err := r.Trigger(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Shutdown(ctx), context.DeadlineExceeded)
	assert.False(t, r.Running())

	report := <-reports
	require.NotNil(t, report)
	for _, topic := range report.Topics {
		assert.ErrorIs(t, topic.Err, context.Canceled)
	}
}

func TestRefresher_RefreshTopic(t *testing.T) {
	ingester := newFakeIngester()
	r := newTestRefresher(t, ingester)

	added, err := r.RefreshTopic(context.Background(), "team_ferrari")
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, []core.TopicKey{"team_ferrari"}, ingester.ingested)

	ingester.fetchErrs["driver_hamilton"] = errors.New("boom")
	_, err = r.RefreshTopic(context.Background(), "driver_hamilton")
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 2, ingester.calls("driver_hamilton"))
}

// stubSource implements news.Source for the pipeline integration test.
type stubSource struct{}

func (stubSource) Fetch(ctx context.Context, query string, limit int) ([]core.RawArticle, error) {
	return []core.RawArticle{
		{Title: "Upgrade package", Content: "New floor", URL: "https://example.com/" + query},
	}, nil
}

func (stubSource) Name() string { return "stub" }

func TestRefresher_WithPipeline(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	pipeline, err := ingestion.NewPipeline(repo, mock.NewMockProvider(), ingestion.WithSource(stubSource{}))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	r := newTestRefresher(t, pipeline)

	report, err := r.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Added())

	// Same URLs on the second cycle are deduplicated
	report, err = r.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Added())

	entries, err := repo.Load(context.Background(), "team_ferrari")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Summary: Upgrade package", entries[0].Summary)
}
