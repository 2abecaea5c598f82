package server

import (
	"time"

	"github.com/poiesic/pitwall/core"
	"github.com/poiesic/pitwall/news"
)

type QueryRequest struct {
	Question  string `json:"question"`
	TopicHint string `json:"topicHint"`
}

type PartitionQueryRequest struct {
	Question string `json:"question"`
}

type PartitionQueryResponse struct {
	Answer      string                 `json:"answer"`
	ContextUsed []*core.KnowledgeEntry `json:"contextUsed"`
}

// ArticleRequest is a pushed article. PublishedAt accepts the same formats
// as the news source: RFC3339, "Jan 2, 2006" or "N hours ago".
type ArticleRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

type UpdateRequest struct {
	Articles []ArticleRequest `json:"articles"`
	TopicKey core.TopicKey    `json:"topicKey"`
}

type UpdateResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type TopicsResponse struct {
	Topics []core.TopicStatus `json:"topics"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toRawArticles(in []ArticleRequest, now time.Time) []core.RawArticle {
	out := make([]core.RawArticle, len(in))
	for i, a := range in {
		var published time.Time
		if a.PublishedAt != "" {
			published = news.ParseDate(a.PublishedAt, now)
		}
		out[i] = core.RawArticle{
			Title:       a.Title,
			Content:     a.Content,
			URL:         a.URL,
			PublishedAt: published,
		}
	}
	return out
}
