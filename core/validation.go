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

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ValidateTopicKey checks that a topic key is usable as a partition address.
// Keys must be non-empty and contain no whitespace or control characters.
func ValidateTopicKey(key TopicKey) error {
	if key == "" {
		return fmt.Errorf("%w: key is empty", ErrInvalidTopicKey)
	}
	if strings.IndexFunc(string(key), isKeyBreaking) >= 0 {
		return fmt.Errorf("%w: %q contains whitespace or control characters", ErrInvalidTopicKey, key)
	}
	return nil
}

func isKeyBreaking(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsControl(r)
}

// ValidateRawArticle validates an article before ingestion.
//
// Validation rules:
//   - Title or Content must not be empty
//
// NOT validated:
//   - URL (articles without a source are stored with an empty Source)
//   - PublishedAt (zero is replaced with the ingestion time)
func ValidateRawArticle(article *RawArticle) error {
	if article == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}
	if strings.TrimSpace(article.Title) == "" && strings.TrimSpace(article.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyArticle)
	}
	return nil
}

// ValidateKnowledgeEntry validates an entry according to domain rules.
//
// Validation rules:
//   - ID, TopicKey and Summary must not be empty
//   - Scope and Type must be known values
//   - CreatedAt must not be in the future
func ValidateKnowledgeEntry(entry *KnowledgeEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}
	if entry.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyID)
	}
	if err := ValidateTopicKey(entry.TopicKey); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	if entry.Summary == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptySummary)
	}
	if err := ValidateScope(entry.Scope); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	if err := ValidateEntryType(entry.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	if !IsValidTimestamp(entry.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrInvalidTimestamp)
	}
	return nil
}

// ValidateScope validates that a Scope has a known value.
func ValidateScope(scope Scope) error {
	switch scope {
	case ScopeSeason, ScopeTeam, ScopeDriver, ScopeRace:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidScope, scope)
}

// ValidateEntryType validates that an EntryType has a known value.
func ValidateEntryType(t EntryType) error {
	switch t {
	case EntryTypeResult, EntryTypeNews, EntryTypeTechnical, EntryTypeRegulation, EntryTypeIncident:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidEntryType, t)
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
