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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidEntry indicates a KnowledgeEntry failed validation.
	ErrInvalidEntry = errors.New("invalid knowledge entry")

	// ErrInvalidArticle indicates a RawArticle failed validation.
	ErrInvalidArticle = errors.New("invalid raw article")

	// ErrInvalidTopicKey indicates a topic key is empty or malformed.
	ErrInvalidTopicKey = errors.New("invalid topic key")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptySummary indicates the Summary field is empty.
	ErrEmptySummary = errors.New("summary cannot be empty")

	// ErrEmptyID indicates the ID field is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrInvalidScope indicates an unknown Scope value.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrInvalidEntryType indicates an unknown EntryType value.
	ErrInvalidEntryType = errors.New("invalid entry type")

	// ErrEmptyArticle indicates an article has neither title nor content.
	ErrEmptyArticle = errors.New("article has no title or content")
)
