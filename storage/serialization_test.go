package storage

import (
	"testing"
	"time"

	"github.com/poiesic/pitwall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalEntry(t *testing.T) {
	published := time.Date(2025, 7, 6, 14, 3, 0, 123456789, time.UTC)
	entry := &core.KnowledgeEntry{
		ID:        "0b8e1a52-2f1c-4f5e-8a55-0c9a7bb0c0de",
		TopicKey:  "race_2025_r12_uk",
		Scope:     core.ScopeRace,
		Type:      core.EntryTypeResult,
		Summary:   "Norris won at Silverstone.",
		Source:    "https://example.com/silverstone",
		Timestamp: published,
		CreatedAt: published.Add(time.Hour),
	}

	data, err := MarshalEntry(entry)
	require.NoError(t, err)

	decoded, err := UnmarshalEntry(data)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, decoded.ID)
	assert.Equal(t, entry.TopicKey, decoded.TopicKey)
	assert.Equal(t, entry.Summary, decoded.Summary)
	assert.Equal(t, entry.Source, decoded.Source)
	// nanosecond precision survives the round trip
	assert.True(t, entry.Timestamp.Equal(decoded.Timestamp))
	assert.True(t, entry.CreatedAt.Equal(decoded.CreatedAt))
}

func TestUnmarshal_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated map", []byte{0xa2, 0x01}},
		{"wrong major type", []byte{0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalEntry(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)

			_, err = UnmarshalMeta(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestMarshalUnmarshalMeta(t *testing.T) {
	meta := &PartitionMeta{Count: 42, LastUpdated: time.Now().UTC()}

	data, err := MarshalMeta(meta)
	require.NoError(t, err)

	decoded, err := UnmarshalMeta(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), decoded.Count)
	assert.True(t, meta.LastUpdated.Equal(decoded.LastUpdated))
}
