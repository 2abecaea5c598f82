package query

import "github.com/poiesic/pitwall/core"

// Monitor provides hooks to observe the query process.
// Implement this interface to track intermediate steps during a query.
type Monitor interface {
	Start(key core.TopicKey, question string)
	AfterContextLoad(entries []*core.KnowledgeEntry)
	AnswerFailed(err error)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.TopicKey, _ string) {}

func (n *noopMonitor) AfterContextLoad(_ []*core.KnowledgeEntry) {}

func (n *noopMonitor) AnswerFailed(_ error) {}

func (n *noopMonitor) Finish(_ *Result) {}
