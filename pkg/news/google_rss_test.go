package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/mmcdole/gofeed"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>"ACME stock" - Google News</title>
    <language>en-US</language>
    <item>
      <title>Acme Corp Reports Q4 Earnings - Reuters</title>
      <link>https://www.reuters.com/business/acme-q4</link>
      <pubDate>Thu, 26 Feb 2026 11:02:00 GMT</pubDate>
      <description>Acme Corp beat expectations.</description>
    </item>
    <item>
      <title>Acme Guidance Raised - Bloomberg</title>
      <link>https://bloomberg.com/news/acme-guidance</link>
      <pubDate>Thu, 26 Feb 2026 09:00:00 GMT</pubDate>
      <description>Analysts react.</description>
    </item>
    <item>
      <title>Acme Chatter</title>
      <link>https://forum.example.org/acme</link>
      <description>No publish date on this one.</description>
    </item>
  </channel>
</rss>`

func newRSSTestClient(srv *httptest.Server) *GoogleRSSClient {
	return &GoogleRSSClient{
		parser:     gofeed.NewParser(),
		httpClient: srv.Client(),
		baseURL:    srv.URL,
	}
}

func TestGoogleRSSFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	client := newRSSTestClient(srv)

	items, err := client.Fetch(context.Background(), "ACME", 3, 10, 5*time.Second)

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(items))

	first := items[0]
	assert.Equal(t, "Acme Corp Reports Q4 Earnings - Reuters", first.Title)
	assert.Equal(t, "https://www.reuters.com/business/acme-q4", first.URL)
	assert.Equal(t, "reuters.com", first.SourceDomain)
	assert.Equal(t, "en", first.Language)
	assert.Equal(t, "google_rss", first.Source)
	assert.Equal(t, 2026, first.PublishedAt.Year())

	// Missing pubDate normalizes to the zero time, not an error.
	assert.Equal(t, true, items[2].PublishedAt.IsZero())
}

func TestGoogleRSSFetchTrimsToTopK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	client := newRSSTestClient(srv)

	items, err := client.Fetch(context.Background(), "ACME", 3, 2, 5*time.Second)

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(items))
}

func TestGoogleRSSFetchServerErrorIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newRSSTestClient(srv)

	items, err := client.Fetch(context.Background(), "ACME", 3, 10, 5*time.Second)

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(items))
}

func TestGoogleRSSFetchBadFeedIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not a feed</html>"))
	}))
	defer srv.Close()

	client := newRSSTestClient(srv)

	items, err := client.Fetch(context.Background(), "ACME", 3, 10, 5*time.Second)

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(items))
}

func TestDefaultRegistryKeys(t *testing.T) {
	reg := DefaultRegistry()

	for _, key := range []string{"google_rss", "newsapi", "finnhub"} {
		adapter, ok := reg[key]
		assert.Equal(t, true, ok)
		assert.Equal(t, key, adapter.Name())
	}
}
