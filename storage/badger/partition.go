package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pitwall/core"
	"github.com/poiesic/pitwall/storage"
)

// PartitionRepository implements storage.PartitionRepository for BadgerDB.
//
// Every operation on a partition holds that partition's lock for its whole
// duration, so appends to one topic are applied in call order and a Load
// sees either all of an Append or none of it. Different topics use
// different locks.
type PartitionRepository struct {
	backend *Backend
	locks   *keyedLocker
}

var _ storage.PartitionRepository = (*PartitionRepository)(nil)

// NewPartitionRepository creates a new PartitionRepository.
func NewPartitionRepository(backend *Backend) *PartitionRepository {
	return &PartitionRepository{
		backend: backend,
		locks:   newKeyedLocker(),
	}
}

// Close is a no-op; the backend is closed by its owner.
func (r *PartitionRepository) Close() error {
	return nil
}

// acquire validates key, waits for its lock and checks the backend is open.
func (r *PartitionRepository) acquire(ctx context.Context, key core.TopicKey) (func(), error) {
	if err := core.ValidateTopicKey(key); err != nil {
		return nil, err
	}
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	unlock, err := r.locks.lock(ctx, key)
	if err != nil {
		return nil, err
	}
	if r.backend.IsClosed() {
		unlock()
		return nil, storage.ErrStorageClosed
	}
	return unlock, nil
}

// Append adds entries to the end of the partition in a single transaction.
func (r *PartitionRepository) Append(ctx context.Context, key core.TopicKey, entries ...*core.KnowledgeEntry) error {
	if len(entries) == 0 {
		return core.ValidateTopicKey(key)
	}
	for _, entry := range entries {
		if err := core.ValidateKnowledgeEntry(entry); err != nil {
			return err
		}
		if entry.TopicKey != key {
			return fmt.Errorf("%w: entry %s belongs to %s, not %s", storage.ErrTopicMismatch, entry.ID, entry.TopicKey, key)
		}
	}

	unlock, err := r.acquire(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		meta, err := readMeta(tx, key)
		if err != nil {
			return err
		}

		for i, entry := range entries {
			idKey := makeIDKey(key, entry.ID)
			_, err := tx.Get(idKey)
			if err == nil {
				return fmt.Errorf("%w: entry %s in %s", storage.ErrDuplicateKey, entry.ID, key)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			value, err := storage.MarshalEntry(entry)
			if err != nil {
				return err
			}
			entryKey := makeEntryKey(key, meta.Count+uint64(i))
			if err := tx.Set(entryKey, value); err != nil {
				return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
			}
			if err := tx.Set(idKey, entryKey); err != nil {
				return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
			}
			if entry.Source != "" {
				if err := tx.Set(makeSourceKey(key, entry.Source), []byte(entry.ID)); err != nil {
					return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
				}
			}
		}

		meta.Count += uint64(len(entries))
		meta.LastUpdated = time.Now().UTC()
		value, err := storage.MarshalMeta(meta)
		if err != nil {
			return err
		}
		if err := tx.Set(makeMetaKey(key), value); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}
		r.backend.logger.Debug("appended entries", "topic", key, "count", len(entries), "total", meta.Count)
		return nil
	}, true)
}

// Load returns every entry in the partition in append order.
func (r *PartitionRepository) Load(ctx context.Context, key core.TopicKey) ([]*core.KnowledgeEntry, error) {
	unlock, err := r.acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	entries := []*core.KnowledgeEntry{}
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartitionPrefix(partitionEntryPrefix, key)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.KnowledgeEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Info returns the entry count and last update time of the partition.
func (r *PartitionRepository) Info(ctx context.Context, key core.TopicKey) (*core.PartitionInfo, error) {
	unlock, err := r.acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var meta *storage.PartitionMeta
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		meta, err = readMeta(tx, key)
		return err
	}, false)
	if err != nil {
		return nil, err
	}

	return &core.PartitionInfo{
		TopicKey:    key,
		Entries:     int(meta.Count),
		LastUpdated: meta.LastUpdated,
	}, nil
}

// KnownSources reports which sources are already present in the partition.
func (r *PartitionRepository) KnownSources(ctx context.Context, key core.TopicKey, sources ...string) (map[string]bool, error) {
	known := make(map[string]bool, len(sources))
	if len(sources) == 0 {
		return known, core.ValidateTopicKey(key)
	}

	unlock, err := r.acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, source := range sources {
			if source == "" {
				continue
			}
			_, err := tx.Get(makeSourceKey(key, source))
			if err == nil {
				known[source] = true
				continue
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return known, nil
}

// readMeta reads partition metadata, returning zero values if absent.
func readMeta(tx *badger.Txn, key core.TopicKey) (*storage.PartitionMeta, error) {
	item, err := tx.Get(makeMetaKey(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return &storage.PartitionMeta{}, nil
	}
	if err != nil {
		return nil, err
	}

	var meta *storage.PartitionMeta
	err = item.Value(func(val []byte) error {
		var err error
		meta, err = storage.UnmarshalMeta(val)
		return err
	})
	return meta, err
}
