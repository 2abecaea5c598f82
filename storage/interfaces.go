package storage

import (
	"context"

	"github.com/poiesic/pitwall/core"
)

// PartitionRepository stores knowledge partitions keyed by topic.
// Implementations must be thread-safe and support concurrent access.
type PartitionRepository interface {
	// Append adds entries to the end of the partition for key, preserving the
	// given order. All entries become visible together or not at all.
	// Every entry must carry key as its TopicKey.
	// An empty batch is a no-op and does not change LastUpdated.
	Append(ctx context.Context, key core.TopicKey, entries ...*core.KnowledgeEntry) error

	// Load returns the full entry sequence for key in append order.
	// An absent partition yields an empty slice, not an error.
	Load(ctx context.Context, key core.TopicKey) ([]*core.KnowledgeEntry, error)

	// Info returns the entry count and last write time for key.
	// An absent partition yields zero values.
	Info(ctx context.Context, key core.TopicKey) (*core.PartitionInfo, error)

	// KnownSources reports which of the given source URLs already appear in
	// the partition. Empty sources are never known.
	KnownSources(ctx context.Context, key core.TopicKey, sources ...string) (map[string]bool, error)

	// Close releases repository resources. It does not close the backend.
	Close() error
}
