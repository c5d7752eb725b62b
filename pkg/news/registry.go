package news

import "os"

// DefaultRegistry maps every known source key to its adapter. Adapters whose
// API key is absent still register; they report the missing key as an
// expected empty result at fetch time.
func DefaultRegistry() map[string]SourceAdapter {
	return map[string]SourceAdapter{
		"google_rss": NewGoogleRSSClient(),
		"newsapi":    NewNewsAPIClient(os.Getenv("NEWSAPI_API_KEY")),
		"finnhub":    NewFinnhubClient(os.Getenv("FINNHUB_API_KEY")),
	}
}
