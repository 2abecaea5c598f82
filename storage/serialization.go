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

package storage

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/poiesic/pitwall/core"
)

// PartitionMeta is the per-partition bookkeeping record.
type PartitionMeta struct {
	Count       uint64    `cbor:"1,keyasint"`
	LastUpdated time.Time `cbor:"2,keyasint"`
}

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// MarshalEntry serializes a knowledge entry to bytes.
func MarshalEntry(entry *core.KnowledgeEntry) ([]byte, error) {
	data, err := encMode.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalEntry deserializes a knowledge entry from bytes.
func UnmarshalEntry(data []byte) (*core.KnowledgeEntry, error) {
	var entry core.KnowledgeEntry
	if err := cbor.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}

// MarshalMeta serializes partition metadata to bytes.
func MarshalMeta(meta *PartitionMeta) ([]byte, error) {
	data, err := encMode.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalMeta deserializes partition metadata from bytes.
func UnmarshalMeta(data []byte) (*PartitionMeta, error) {
	var meta PartitionMeta
	if err := cbor.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &meta, nil
}
