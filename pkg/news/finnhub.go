package news

import (
	"context"
	"log/slog"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

type FinnhubClient struct {
	client *finnhub.DefaultApiService
}

func NewFinnhubClient(apiKey string) *FinnhubClient {
	if apiKey == "" {
		return &FinnhubClient{}
	}
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	return &FinnhubClient{client: finnhub.NewAPIClient(cfg).DefaultApi}
}

func (c *FinnhubClient) Name() string {
	return "finnhub"
}

func (c *FinnhubClient) Fetch(ctx context.Context, ticker string, days, topK int, timeout time.Duration) ([]Item, error) {
	if c.client == nil {
		slog.Warn("finnhub API key not configured, skipping", "ticker", ticker)
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	now := time.Now()
	res, _, err := c.client.CompanyNews(ctx).
		Symbol(ticker).
		From(now.AddDate(0, 0, -days).Format("2006-01-02")).
		To(now.Format("2006-01-02")).
		Execute()
	if err != nil {
		slog.Warn("finnhub fetch failed", "ticker", ticker, "error", err)
		return nil, nil
	}

	items := make([]Item, 0, len(res))
	for _, entry := range res {
		if len(items) >= topK {
			break
		}

		item := Item{
			Language: "en", // finnhub company news carries no language field
			Source:   c.Name(),
		}
		if entry.Headline != nil {
			item.Title = *entry.Headline
		}
		if entry.Url != nil {
			item.URL = *entry.Url
			item.SourceDomain = Domain(*entry.Url)
		}
		if entry.Summary != nil {
			item.Snippet = *entry.Summary
		}
		if entry.Datetime != nil {
			item.PublishedAt = time.Unix(*entry.Datetime, 0)
		}

		if item.Title == "" && item.URL == "" {
			continue
		}
		items = append(items, item)
	}

	return items, nil
}
