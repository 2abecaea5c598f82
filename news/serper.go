package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/pitwall/core"
)

// DefaultSerperEndpoint is the Serper Google News search endpoint.
const DefaultSerperEndpoint = "https://google.serper.dev/news"

// SerperClient implements Source using the Serper news API.
type SerperClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger
}

var _ Source = (*SerperClient)(nil)

// Option configures a SerperClient.
type Option func(*SerperClient) error

// WithEndpoint overrides the API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *SerperClient) error {
		c.endpoint = endpoint
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *SerperClient) error {
		if client == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.httpClient = client
		return nil
	}
}

// WithTimeout bounds each request.
// Default: 30s
func WithTimeout(d time.Duration) Option {
	return func(c *SerperClient) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		c.httpClient.Timeout = d
		return nil
	}
}

// WithClock sets the time source used for undated and relative publication dates.
func WithClock(now func() time.Time) Option {
	return func(c *SerperClient) error {
		c.now = now
		return nil
	}
}

// NewSerperClient creates a client authenticating with apiKey.
func NewSerperClient(apiKey string, opts ...Option) (*SerperClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &SerperClient{
		apiKey:     apiKey,
		endpoint:   DefaultSerperEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
		logger:     slog.Default().With("component", "serper"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Name implements Source.
func (c *SerperClient) Name() string {
	return "serper"
}

// Fetch implements Source.
func (c *SerperClient) Fetch(ctx context.Context, query string, limit int) ([]core.RawArticle, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	body, err := json.Marshal(serperRequest{Q: query, Num: limit})
	if err != nil {
		return nil, fmt.Errorf("serper encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("serper request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %d %s", ErrUpstreamStatus, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var raw serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("serper decode: %w", err)
	}

	items := raw.News
	if len(items) > limit {
		items = items[:limit]
	}
	now := c.now()
	articles := make([]core.RawArticle, 0, len(items))
	for _, item := range items {
		content := item.Snippet
		if content == "" {
			content = item.Description
		}
		articles = append(articles, core.RawArticle{
			Title:       item.Title,
			Content:     content,
			URL:         item.Link,
			PublishedAt: ParseDate(item.Date, now),
		})
	}

	c.logger.Debug("fetched news", "query", query, "returned", len(raw.News), "kept", len(articles))
	return articles, nil
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	News []serperItem `json:"news"`
}

type serperItem struct {
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Date        string `json:"date"`
}
