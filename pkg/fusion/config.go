package fusion

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the fusion policy, read once from the environment per process.
type Config struct {
	Sources           []string
	Language          string
	AllowlistDomains  map[string]struct{}
	BlocklistDomains  map[string]struct{}
	BlocklistKeywords []string
	HardBlockKeywords []string
	TopK              int
	Days              int
	Timeout           time.Duration
}

func LoadConfig() Config {
	return Config{
		Sources:           splitList(getenv("NEWS_SOURCES", "google_rss,newsapi,finnhub")),
		Language:          strings.ToLower(getenv("NEWS_LANGUAGE", "en")),
		AllowlistDomains:  toSet(splitList(os.Getenv("ALLOWLIST_DOMAINS"))),
		BlocklistDomains:  toSet(splitList(os.Getenv("BLOCKLIST_DOMAINS"))),
		BlocklistKeywords: lowerAll(splitList(os.Getenv("BLOCKLIST_KEYWORDS"))),
		HardBlockKeywords: lowerAll(splitList(os.Getenv("HARD_BLOCK_KEYWORDS"))),
		TopK:              getenvInt("NEWS_TOPK", 5),
		Days:              getenvInt("NEWS_DAYS", 3),
		Timeout:           time.Duration(getenvInt("NEWS_TIMEOUT_S", 20)) * time.Second,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = struct{}{}
	}
	return set
}

func lowerAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.ToLower(item)
	}
	return out
}
