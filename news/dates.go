package news

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var absoluteLayouts = []string{
	time.RFC3339,
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2006-01-02",
}

var relativeDate = regexp.MustCompile(`^(\d+)\s+(second|sec|minute|min|hour|day|week|month|year)s?\s+ago$`)

// ParseDate interprets the publication dates news APIs return: RFC3339,
// a handful of calendar layouts, and relative forms like "3 hours ago".
// Anything unparseable is treated as now.
func ParseDate(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	lower := strings.ToLower(s)
	if lower == "yesterday" {
		return now.AddDate(0, 0, -1)
	}
	m := relativeDate.FindStringSubmatch(lower)
	if m == nil {
		return now
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return now
	}
	switch m[2] {
	case "second", "sec":
		return now.Add(-time.Duration(n) * time.Second)
	case "minute", "min":
		return now.Add(-time.Duration(n) * time.Minute)
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour)
	case "day":
		return now.AddDate(0, 0, -n)
	case "week":
		return now.AddDate(0, 0, -7*n)
	case "month":
		return now.AddDate(0, -n, 0)
	default:
		return now.AddDate(-n, 0, 0)
	}
}
