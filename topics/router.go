package topics

import (
	"strings"

	"github.com/poiesic/pitwall/core"
)

// AutoHint is the hint value meaning "no explicit topic selected".
const AutoHint = "auto"

// Reason describes which rule resolved a question.
type Reason string

const (
	ReasonHint    Reason = "hint"
	ReasonAlias   Reason = "alias"
	ReasonKeyword Reason = "keyword"
	ReasonDefault Reason = "default"
)

// Resolution is the outcome of routing a question.
type Resolution struct {
	TopicKey core.TopicKey
	Reason   Reason
	// Match is the alias or keyword that matched, empty for hint and default.
	Match string
}

// String renders the resolution the way the request log prints it, e.g. "alias:ferrari".
func (r Resolution) String() string {
	if r.Match == "" {
		return string(r.Reason)
	}
	return string(r.Reason) + ":" + r.Match
}

// Router resolves free-text questions to topic keys.
type Router struct {
	table *Table
}

// NewRouter creates a router over table.
func NewRouter(table *Table) (*Router, error) {
	if table == nil {
		return nil, ErrTableRequired
	}
	return &Router{table: table}, nil
}

// Table returns the table the router resolves against.
func (r *Router) Table() *Table {
	return r.table
}

// Resolve returns the topic key for question. It always returns a tracked key.
func (r *Router) Resolve(question, hint string) core.TopicKey {
	return r.Explain(question, hint).TopicKey
}

// Explain resolves question and reports which rule matched.
//
// Rules are tried in order and the first match wins:
//  1. a tracked hint other than "auto"
//  2. the first alias, in declared topic then alias order, contained in the question
//  3. the first topic whose key keyword is contained in the question
//  4. the table default
func (r *Router) Explain(question, hint string) Resolution {
	if hint != "" && hint != AutoHint && r.table.Contains(core.TopicKey(hint)) {
		return Resolution{TopicKey: core.TopicKey(hint), Reason: ReasonHint}
	}

	q := strings.ToLower(question)

	for _, topic := range r.table.topics {
		for _, alias := range topic.Aliases {
			if strings.Contains(q, alias) {
				return Resolution{TopicKey: topic.Key, Reason: ReasonAlias, Match: alias}
			}
		}
	}

	for _, topic := range r.table.topics {
		keyword := topic.Key.Keyword()
		if keyword != "" && strings.Contains(q, keyword) {
			return Resolution{TopicKey: topic.Key, Reason: ReasonKeyword, Match: keyword}
		}
	}

	return Resolution{TopicKey: r.table.defaultKey, Reason: ReasonDefault}
}
