package ingestion

import (
	"context"

	"github.com/poiesic/pitwall/core"
)

// dropKnown removes articles whose URL is already in the partition or
// repeats an earlier article in the same batch. Articles without a URL are
// always kept.
func (p *Pipeline) dropKnown(ctx context.Context, key core.TopicKey, articles []core.RawArticle) ([]core.RawArticle, error) {
	urls := make([]string, 0, len(articles))
	for _, a := range articles {
		if a.URL != "" {
			urls = append(urls, a.URL)
		}
	}
	if len(urls) == 0 {
		return articles, nil
	}

	known, err := p.repo.KnownSources(ctx, key, urls...)
	if err != nil {
		return nil, err
	}

	kept := make([]core.RawArticle, 0, len(articles))
	seen := make(map[string]bool, len(urls))
	for _, a := range articles {
		if a.URL != "" {
			if known[a.URL] || seen[a.URL] {
				continue
			}
			seen[a.URL] = true
		}
		kept = append(kept, a)
	}

	if dropped := len(articles) - len(kept); dropped > 0 {
		p.logger.Debug("dropped known articles", "topic", key, "dropped", dropped)
	}
	return kept, nil
}
