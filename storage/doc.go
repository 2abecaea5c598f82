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

// Package storage provides the storage abstraction layer for pitwall.
//
// Knowledge is kept in partitions, one per tracked topic. A partition is an
// append-only, ordered sequence of core.KnowledgeEntry values addressed by its
// core.TopicKey. This package defines the repository interface that decouples
// the partition store from ingestion and query logic, plus the record codec
// shared by backends.
//
// # Usage
//
// Open a persistent repository:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	repo := badger.NewPartitionRepository(backend)
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryRepository()
//
// # Thread Safety
//
// All repository implementations must be thread-safe. Operations on the same
// partition are serialized; operations on different partitions must not block
// each other. A Load never observes a partially applied Append.
//
// # Context Support
//
// All repository methods accept context.Context. Cancellation is honoured
// while waiting for a partition; once a write transaction starts it runs to
// completion.
package storage
