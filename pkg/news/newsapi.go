package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

type NewsAPIClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

func NewNewsAPIClient(apiKey string) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
		baseURL:    "https://newsapi.org/v2/everything",
	}
}

func (c *NewsAPIClient) Name() string {
	return "newsapi"
}

func (c *NewsAPIClient) Fetch(ctx context.Context, ticker string, days, topK int, timeout time.Duration) ([]Item, error) {
	if c.apiKey == "" {
		slog.Warn("newsapi API key not configured, skipping", "ticker", ticker)
		return nil, nil
	}

	q := url.Values{}
	q.Set("q", ticker)
	q.Set("from", time.Now().AddDate(0, 0, -days).Format("2006-01-02"))
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", fmt.Sprintf("%d", topK))
	q.Set("apiKey", c.apiKey)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("newsapi fetch failed", "ticker", ticker, "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("newsapi unexpected status", "ticker", ticker, "status", resp.StatusCode)
		return nil, nil
	}

	var raw newsapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		slog.Warn("newsapi decode failed", "ticker", ticker, "error", err)
		return nil, nil
	}

	items := make([]Item, 0, len(raw.Articles))
	for _, a := range raw.Articles {
		if len(items) >= topK {
			break
		}
		if a.Title == "" && a.URL == "" {
			continue
		}

		items = append(items, Item{
			Title:        a.Title,
			URL:          a.URL,
			SourceDomain: Domain(a.URL),
			PublishedAt:  ParseWhen(a.PublishedAt),
			Language:     "en", // the request pins language=en
			Snippet:      a.Description,
			Source:       c.Name(),
		})
	}

	return items, nil
}

type newsapiResponse struct {
	Status   string           `json:"status"`
	Articles []newsapiArticle `json:"articles"`
}

type newsapiArticle struct {
	Source      newsapiSource `json:"source"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	PublishedAt string        `json:"publishedAt"`
}

type newsapiSource struct {
	Name string `json:"name"`
}
