package mock

import (
	"context"
	"sync"

	"github.com/poiesic/pitwall/core"
)

// MockSummarizer is a test double for ai.Summarizer.
// It allows custom behavior injection via function fields.
type MockSummarizer struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, returns "Summary: " followed by the article title.
	SummarizeFunc func(ctx context.Context, article core.RawArticle) (string, error)

	mu        sync.Mutex
	callCount int
	articles  []core.RawArticle
}

// NewMockSummarizer creates a mock summarizer with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// Summarize records the call and returns the injected or default summary.
func (m *MockSummarizer) Summarize(ctx context.Context, article core.RawArticle) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.articles = append(m.articles, article)
	fn := m.SummarizeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, article)
	}
	return "Summary: " + article.Title, nil
}

// CallCount returns the number of times Summarize was called.
func (m *MockSummarizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Articles returns the articles passed to Summarize, in call order.
func (m *MockSummarizer) Articles() []core.RawArticle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.RawArticle, len(m.articles))
	copy(out, m.articles)
	return out
}

// Reset clears the call count and custom functions.
func (m *MockSummarizer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.articles = nil
	m.SummarizeFunc = nil
}
