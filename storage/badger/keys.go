package badger

import (
	"encoding/binary"

	"github.com/poiesic/pitwall/core"
)

// Key prefixes for different record kinds. A NUL byte terminates the topic
// key so that no key is ever a prefix of another partition's keys.
const (
	partitionMetaPrefix  = "pmeta"
	partitionEntryPrefix = "pentry"
	partitionIDPrefix    = "pid"
	partitionSrcPrefix   = "psrc"
	keySep               = 0x00
)

// makePartitionPrefix generates prefix\0key\0.
func makePartitionPrefix(prefix string, key core.TopicKey) []byte {
	buf := make([]byte, 0, len(prefix)+len(key)+2)
	buf = append(buf, prefix...)
	buf = append(buf, keySep)
	buf = append(buf, key...)
	return append(buf, keySep)
}

// makeMetaKey generates the key of a partition's metadata record.
// Format: pmeta\0key
func makeMetaKey(key core.TopicKey) []byte {
	buf := make([]byte, 0, len(partitionMetaPrefix)+len(key)+1)
	buf = append(buf, partitionMetaPrefix...)
	buf = append(buf, keySep)
	return append(buf, key...)
}

// makeEntryKey generates the key of the entry at position seq.
// Format: pentry\0key\0seq
func makeEntryKey(key core.TopicKey, seq uint64) []byte {
	// Write in BigEndian order so lexicographic sort matches append order
	return binary.BigEndian.AppendUint64(makePartitionPrefix(partitionEntryPrefix, key), seq)
}

// makeIDKey generates the key of the entry ID index.
// Format: pid\0key\0id
func makeIDKey(key core.TopicKey, id string) []byte {
	return append(makePartitionPrefix(partitionIDPrefix, key), id...)
}

// makeSourceKey generates the key of the source URL index.
// Format: psrc\0key\0sourceID
func makeSourceKey(key core.TopicKey, source string) []byte {
	return binary.BigEndian.AppendUint64(makePartitionPrefix(partitionSrcPrefix, key), uint64(core.SourceID(key, source)))
}
