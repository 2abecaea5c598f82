package ai

import (
	"context"

	"github.com/poiesic/pitwall/core"
)

// Summarizer condenses a news article into a short factual paragraph.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize returns the summary text for article.
	// An empty string with a nil error means the model produced nothing.
	Summarize(ctx context.Context, article core.RawArticle) (string, error)
}

// Answerer produces a natural-language answer from supplied context only.
// Implementations must be thread-safe for concurrent use.
type Answerer interface {
	// Answer answers question using only entries. When entries do not
	// contain the answer the reply should say so rather than invent one.
	Answer(ctx context.Context, question string, entries []*core.KnowledgeEntry) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Summarizer returns the article summarization service.
	Summarizer() Summarizer

	// Answerer returns the question answering service.
	Answerer() Answerer

	// Close releases resources held by the provider and its services.
	Close() error
}
