package news

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

type GoogleRSSClient struct {
	parser     *gofeed.Parser
	httpClient *http.Client
	baseURL    string
}

func NewGoogleRSSClient() *GoogleRSSClient {
	return &GoogleRSSClient{
		parser:     gofeed.NewParser(),
		httpClient: &http.Client{},
		baseURL:    "https://news.google.com/rss/search",
	}
}

func (c *GoogleRSSClient) Name() string {
	return "google_rss"
}

func (c *GoogleRSSClient) Fetch(ctx context.Context, ticker string, days, topK int, timeout time.Duration) ([]Item, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("%s stock when:%dd", ticker, days))
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google_rss request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("google_rss fetch failed", "ticker", ticker, "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("google_rss unexpected status", "ticker", ticker, "status", resp.StatusCode)
		return nil, nil
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		slog.Warn("google_rss parse failed", "ticker", ticker, "error", err)
		return nil, nil
	}

	lang := "en"
	if feed.Language != "" {
		lang = strings.ToLower(strings.SplitN(feed.Language, "-", 2)[0])
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if len(items) >= topK {
			break
		}
		if entry.Title == "" && entry.Link == "" {
			continue
		}

		item := Item{
			Title:        entry.Title,
			URL:          entry.Link,
			SourceDomain: Domain(entry.Link),
			Language:     lang,
			Snippet:      entry.Description,
			Source:       c.Name(),
		}
		if entry.PublishedParsed != nil {
			item.PublishedAt = *entry.PublishedParsed
		} else {
			item.PublishedAt = ParseWhen(entry.Published)
		}

		items = append(items, item)
	}

	return items, nil
}
