package news

import (
	"context"
	"strings"

	"github.com/poiesic/pitwall/core"
)

// DefaultLimit is the number of articles requested per topic when the caller does not say.
const DefaultLimit = 10

const siteFilter = "site:formula1.com OR site:autosport.com OR site:motorsport.com"

// Source returns recent articles for a search query.
// Implementations must be thread-safe for concurrent use.
type Source interface {
	// Fetch returns at most limit articles for query.
	Fetch(ctx context.Context, query string, limit int) ([]core.RawArticle, error)

	// Name identifies the source in logs.
	Name() string
}

// BuildQuery derives a news search string from a topic key's prefix.
//
//	driver_hamilton         -> "hamilton 2025 F1 news ..."
//	team_red_bull           -> "red bull F1 2025 team news ..."
//	race_2025_r18_singapore -> "singapore Grand Prix 2025 F1 race results summary ..."
//	anything else           -> season-wide news
func BuildQuery(key core.TopicKey) string {
	s := string(key)
	switch {
	case strings.HasPrefix(s, "driver_"):
		name := strings.ReplaceAll(strings.TrimPrefix(s, "driver_"), "_", " ")
		return name + " 2025 F1 news " + siteFilter
	case strings.HasPrefix(s, "team_"):
		team := strings.ReplaceAll(strings.TrimPrefix(s, "team_"), "_", " ")
		return team + " F1 2025 team news " + siteFilter
	case strings.HasPrefix(s, "race_2025_"):
		return key.Keyword() + " Grand Prix 2025 F1 race results summary " + siteFilter
	default:
		return "Formula 1 2025 season news " + siteFilter
	}
}
