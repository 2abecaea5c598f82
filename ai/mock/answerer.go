package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/pitwall/core"
)

// MockAnswerer is a test double for ai.Answerer.
type MockAnswerer struct {
	// AnswerFunc is called by Answer if set.
	// If nil, returns "Answer from N entries".
	AnswerFunc func(ctx context.Context, question string, entries []*core.KnowledgeEntry) (string, error)

	mu           sync.Mutex
	callCount    int
	lastQuestion string
	lastEntries  []*core.KnowledgeEntry
}

// NewMockAnswerer creates a mock answerer with default behavior.
func NewMockAnswerer() *MockAnswerer {
	return &MockAnswerer{}
}

// Answer records the call and returns the injected or default answer.
func (m *MockAnswerer) Answer(ctx context.Context, question string, entries []*core.KnowledgeEntry) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastQuestion = question
	m.lastEntries = entries
	fn := m.AnswerFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, question, entries)
	}
	return fmt.Sprintf("Answer from %d entries", len(entries)), nil
}

// CallCount returns the number of times Answer was called.
func (m *MockAnswerer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastCall returns the question and entries of the most recent call.
func (m *MockAnswerer) LastCall() (string, []*core.KnowledgeEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastQuestion, m.lastEntries
}

// Reset clears recorded calls and custom functions.
func (m *MockAnswerer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastQuestion = ""
	m.lastEntries = nil
	m.AnswerFunc = nil
}
