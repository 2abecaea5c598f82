package refresh

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/poiesic/pitwall/core"
)

// ProgressTracker reports per-topic progress of a refresh cycle.
type ProgressTracker struct {
	writer    io.Writer
	total     int
	done      int
	added     int
	failed    int
	startTime time.Time
	started   bool
	mu        sync.Mutex
}

// NewProgressTracker creates a new progress tracker.
// writer: where to write progress output (typically os.Stderr)
func NewProgressTracker(writer io.Writer) *ProgressTracker {
	return &ProgressTracker{writer: writer}
}

// Start begins tracking a cycle over total topics.
func (p *ProgressTracker) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.total = total
	p.done = 0
	p.added = 0
	p.failed = 0
}

// TopicDone records the outcome of one topic and prints a progress line.
func (p *ProgressTracker) TopicDone(key core.TopicKey, added int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.done++
	if p.done > p.total {
		p.total = p.done
	}

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.done) / float64(p.total) * 100.0
	}

	if err != nil {
		p.failed++
		fmt.Fprintf(p.writer, "[%d/%d %5.1f%%] %s failed: %v\n", p.done, p.total, percentage, key, err)
		return
	}
	p.added += added
	fmt.Fprintf(p.writer, "[%d/%d %5.1f%%] %s +%d\n", p.done, p.total, percentage, key, added)
}

// Finish prints the cycle summary.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	fmt.Fprintf(p.writer, "Refreshed %d topics in %s: %d entries added, %d failed\n",
		p.done, time.Since(p.startTime).Round(time.Millisecond), p.added, p.failed)
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}

	return time.Since(p.startTime)
}
