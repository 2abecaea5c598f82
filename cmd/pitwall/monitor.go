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

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/poiesic/pitwall/core"
	"github.com/poiesic/pitwall/query"
)

// verboseMonitor prints each query step to w.
type verboseMonitor struct {
	w       io.Writer
	started time.Time
}

var _ query.Monitor = (*verboseMonitor)(nil)

func newVerboseMonitor(w io.Writer) *verboseMonitor {
	return &verboseMonitor{w: w}
}

func (m *verboseMonitor) Start(key core.TopicKey, question string) {
	m.started = time.Now()
	fmt.Fprintf(m.w, "topic: %s\nquestion: %q\n", key, question)
}

func (m *verboseMonitor) AfterContextLoad(entries []*core.KnowledgeEntry) {
	fmt.Fprintf(m.w, "context: %d entries\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(m.w, "  [%s] %s\n", e.Timestamp.Format(time.DateOnly), e.Summary)
	}
}

func (m *verboseMonitor) AnswerFailed(err error) {
	fmt.Fprintf(m.w, "answer failed: %v\n", err)
}

func (m *verboseMonitor) Finish(result *query.Result) {
	fmt.Fprintf(m.w, "answered in %s\n", time.Since(m.started).Round(time.Millisecond))
}
