package news

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Item is one normalized news candidate. URL is the deduplication key within
// a fetch cycle; adapters must populate at least one of URL and Title.
type Item struct {
	Title        string
	URL          string
	SourceDomain string
	PublishedAt  time.Time // zero when the provider gave nothing parseable
	Language     string
	Snippet      string
	Source       string // adapter key, e.g. "google_rss"
}

// SourceAdapter is one news provider. Fetch returns at most topK items and
// must not surface provider-expected failures (missing API key, HTTP error,
// empty payload, timeout): it logs and returns an empty slice instead.
type SourceAdapter interface {
	Fetch(ctx context.Context, ticker string, days, topK int, timeout time.Duration) ([]Item, error)
	Name() string
}

// Domain canonicalizes the hostname of a URL: lowercased, port stripped,
// leading "www." stripped. Empty when the URL does not parse.
func Domain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

var relativeAge = regexp.MustCompile(`^(\d+)\s+(minute|min|hour|day|week)s?\s+ago$`)

// ParseWhen parses the published timestamps providers actually send: ISO-8601
// and the usual feed formats, plus relative-age strings like "6 hours ago".
// Returns the zero time when nothing matches.
func ParseWhen(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	if m := relativeAge.FindStringSubmatch(strings.ToLower(s)); m != nil {
		n, _ := strconv.Atoi(m[1])
		var unit time.Duration
		switch m[2] {
		case "minute", "min":
			unit = time.Minute
		case "hour":
			unit = time.Hour
		case "day":
			unit = 24 * time.Hour
		case "week":
			unit = 7 * 24 * time.Hour
		}
		return time.Now().Add(-time.Duration(n) * unit)
	}

	parsed, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
