package badger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/pitwall/core"
	"github.com/poiesic/pitwall/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(key core.TopicKey, summary, source string) *core.KnowledgeEntry {
	now := time.Now().UTC()
	return &core.KnowledgeEntry{
		ID:        uuid.NewString(),
		TopicKey:  key,
		Scope:     core.ScopeForTopic(key),
		Type:      core.EntryTypeNews,
		Summary:   summary,
		Source:    source,
		Timestamp: now.Add(-time.Hour),
		CreatedAt: now,
	}
}

func setupRepo(t *testing.T) *PartitionRepository {
	t.Helper()
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func summaries(entries []*core.KnowledgeEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Summary
	}
	return out
}

func TestLoad_AbsentPartition(t *testing.T) {
	repo := setupRepo(t)

	entries, err := repo.Load(context.Background(), "team_ferrari")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	info, err := repo.Info(context.Background(), "team_ferrari")
	require.NoError(t, err)
	assert.Equal(t, 0, info.Entries)
	assert.True(t, info.LastUpdated.IsZero())
}

func TestAppend_PreservesOrderAcrossBatches(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	key := core.TopicKey("team_ferrari")

	require.NoError(t, repo.Append(ctx, key,
		newEntry(key, "e1", "https://a"),
		newEntry(key, "e2", "https://b"),
	))
	require.NoError(t, repo.Append(ctx, key, newEntry(key, "e3", "")))

	entries, err := repo.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3"}, summaries(entries))
	assert.Equal(t, "https://a", entries[0].Source)
	assert.Equal(t, core.ScopeTeam, entries[0].Scope)

	info, err := repo.Info(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Entries)
	assert.False(t, info.LastUpdated.IsZero())
}

func TestAppend_OrderBeyondOneByte(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	key := core.TopicKey("season_2025")

	for i := 0; i < 300; i++ {
		require.NoError(t, repo.Append(ctx, key, newEntry(key, fmt.Sprintf("%03d", i), "")))
	}

	entries, err := repo.Load(ctx, key)
	require.NoError(t, err)
	require.Len(t, entries, 300)
	for i, e := range entries {
		assert.Equal(t, fmt.Sprintf("%03d", i), e.Summary)
	}
}

func TestAppend_EmptyBatchIsNoOp(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	key := core.TopicKey("driver_hamilton")

	require.NoError(t, repo.Append(ctx, key))
	info, err := repo.Info(ctx, key)
	require.NoError(t, err)
	assert.True(t, info.LastUpdated.IsZero())

	require.NoError(t, repo.Append(ctx, key, newEntry(key, "e1", "")))
	before, err := repo.Info(ctx, key)
	require.NoError(t, err)

	require.NoError(t, repo.Append(ctx, key))
	after, err := repo.Info(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, before.LastUpdated, after.LastUpdated)
	assert.Equal(t, 1, after.Entries)
}

func TestAppend_RejectsInvalidBatchAtomically(t *testing.T) {
	key := core.TopicKey("team_ferrari")

	duplicate := newEntry(key, "dup", "")
	invalid := newEntry(key, "", "")
	foreign := newEntry("driver_hamilton", "wrong partition", "")

	tests := []struct {
		name    string
		batch   []*core.KnowledgeEntry
		wantErr error
	}{
		{"nil entry", []*core.KnowledgeEntry{newEntry(key, "ok", ""), nil}, core.ErrInvalidEntry},
		{"empty summary", []*core.KnowledgeEntry{newEntry(key, "ok", ""), invalid}, core.ErrEmptySummary},
		{"topic mismatch", []*core.KnowledgeEntry{newEntry(key, "ok", ""), foreign}, storage.ErrTopicMismatch},
		{"duplicate id within batch", []*core.KnowledgeEntry{duplicate, duplicate}, storage.ErrDuplicateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := setupRepo(t)
			ctx := context.Background()

			err := repo.Append(ctx, key, tt.batch...)
			assert.ErrorIs(t, err, tt.wantErr)

			entries, err := repo.Load(ctx, key)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestAppend_DuplicateIDAcrossBatches(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	key := core.TopicKey("team_ferrari")

	entry := newEntry(key, "e1", "")
	require.NoError(t, repo.Append(ctx, key, entry))

	err := repo.Append(ctx, key, newEntry(key, "e2", ""), entry)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	entries, err := repo.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, summaries(entries))
}

func TestAppend_InvalidKey(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Append(ctx, "bad key"), core.ErrInvalidTopicKey)
	_, err := repo.Load(ctx, "")
	assert.ErrorIs(t, err, core.ErrInvalidTopicKey)
}

func TestPartitionsAreIsolated(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	// "team" is a byte prefix of "team_ferrari"; the separator keeps them apart
	require.NoError(t, repo.Append(ctx, "team", newEntry("team", "short", "")))
	require.NoError(t, repo.Append(ctx, "team_ferrari", newEntry("team_ferrari", "long", "")))

	entries, err := repo.Load(ctx, "team")
	require.NoError(t, err)
	assert.Equal(t, []string{"short"}, summaries(entries))

	entries, err = repo.Load(ctx, "team_ferrari")
	require.NoError(t, err)
	assert.Equal(t, []string{"long"}, summaries(entries))
}

func TestKnownSources(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	key := core.TopicKey("team_ferrari")

	require.NoError(t, repo.Append(ctx, key,
		newEntry(key, "e1", "https://example.com/a"),
		newEntry(key, "e2", ""),
	))
	require.NoError(t, repo.Append(ctx, "driver_hamilton", newEntry("driver_hamilton", "e3", "https://example.com/b")))

	known, err := repo.KnownSources(ctx, key, "https://example.com/a", "https://example.com/b", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"https://example.com/a": true}, known)

	known, err = repo.KnownSources(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, known)
}

func TestLoad_NeverObservesPartialAppend(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	key := core.TopicKey("race_2025_r12_uk")
	const batchSize = 5
	const batches = 20

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for b := 0; b < batches; b++ {
			batch := make([]*core.KnowledgeEntry, batchSize)
			for i := range batch {
				batch[i] = newEntry(key, fmt.Sprintf("b%02d-%d", b, i), "")
			}
			if err := repo.Append(ctx, key, batch...); err != nil {
				t.Errorf("append failed: %v", err)
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries, err := repo.Load(ctx, key)
			if err != nil {
				t.Errorf("load failed: %v", err)
				return
			}
			if len(entries)%batchSize != 0 {
				t.Errorf("observed partial batch: %d entries", len(entries))
			}
		}()
	}
	wg.Wait()

	entries, err := repo.Load(ctx, key)
	require.NoError(t, err)
	assert.Len(t, entries, batchSize*batches)
}

func TestConcurrentAppendsAcrossPartitions(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	keys := []core.TopicKey{"team_ferrari", "driver_hamilton", "season_2025"}

	var wg sync.WaitGroup
	for _, key := range keys {
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(key core.TopicKey, i int) {
				defer wg.Done()
				if err := repo.Append(ctx, key, newEntry(key, fmt.Sprintf("%d", i), "")); err != nil {
					t.Errorf("append failed: %v", err)
				}
			}(key, i)
		}
	}
	wg.Wait()

	for _, key := range keys {
		info, err := repo.Info(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 10, info.Entries, key)
	}
}

func TestHeldPartitionDoesNotBlockOthers(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	unlock, err := repo.locks.lock(ctx, "team_ferrari")
	require.NoError(t, err)
	defer unlock()

	done := make(chan error, 1)
	go func() {
		done <- repo.Append(ctx, "driver_hamilton", newEntry("driver_hamilton", "e1", ""))
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("append to an unrelated partition was blocked")
	}

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = repo.Load(waitCtx, "team_ferrari")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClosedBackend(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, err = repo.Load(context.Background(), "team_ferrari")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	err = repo.Append(context.Background(), "team_ferrari", newEntry("team_ferrari", "e1", ""))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	key := core.TopicKey("team_ferrari")

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	repo := NewPartitionRepository(backend)
	require.NoError(t, repo.Append(ctx, key,
		newEntry(key, "e1", "https://example.com/a"),
		newEntry(key, "e2", ""),
	))
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	repo = NewPartitionRepository(backend)

	entries, err := repo.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, summaries(entries))

	known, err := repo.KnownSources(ctx, key, "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, known["https://example.com/a"])

	require.NoError(t, repo.Append(ctx, key, newEntry(key, "e3", "")))
	entries, err = repo.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3"}, summaries(entries))
}
