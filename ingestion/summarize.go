package ingestion

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/pitwall/core"
)

// SummaryUnavailable is stored in place of a summary the model could not produce.
const SummaryUnavailable = "Summary unavailable."

// summarizeAll summarizes articles concurrently on the pipeline's pool.
// The result at index i belongs to articles[i]. Failures are absorbed into
// SummaryUnavailable.
func (p *Pipeline) summarizeAll(ctx context.Context, articles []core.RawArticle) []string {
	summaries := make([]string, len(articles))
	var wg sync.WaitGroup

	for i := range articles {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			summaries[i] = p.summarizeOne(ctx, articles[i])
		}
		if err := p.pool.Submit(task); err != nil {
			// pool released or overloaded; do the work on this goroutine
			p.logger.Warn("summary pool unavailable, summarizing inline", "err", err)
			task()
		}
	}

	wg.Wait()
	return summaries
}

func (p *Pipeline) summarizeOne(ctx context.Context, article core.RawArticle) string {
	if err := core.ValidateRawArticle(&article); err != nil {
		p.logger.Debug("nothing to summarize", "url", article.URL, "err", err)
		return SummaryUnavailable
	}
	summary, err := p.summarizer.Summarize(ctx, article)
	if err != nil {
		p.logger.Warn("summary failed", "title", article.Title, "url", article.URL, "err", err)
		return SummaryUnavailable
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		p.logger.Debug("empty summary", "title", article.Title, "url", article.URL)
		return SummaryUnavailable
	}
	return summary
}
