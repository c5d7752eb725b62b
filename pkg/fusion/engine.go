package fusion

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"tickerfuse/pkg/news"
	"tickerfuse/pkg/resilience"
)

// domainBoost puts every allow-listed item above every non-boosted one,
// regardless of recency.
const domainBoost = 1_000_000

// MetricRecorder receives best-effort fetch telemetry.
type MetricRecorder interface {
	RecordVendorEvent(provider, event string, ok bool, latencyMs int64)
}

// Engine merges news from configured sources, in priority order, into one
// ranked candidate list per ticker.
type Engine struct {
	cfg      Config
	adapters map[string]news.SourceAdapter
	exec     *resilience.Executor
	policies map[string]resilience.Policy
	metrics  MetricRecorder
}

// NewEngine builds an engine over a source registry. exec and metrics may be
// nil; policies overrides the per-provider default retry policy.
func NewEngine(cfg Config, adapters map[string]news.SourceAdapter, exec *resilience.Executor, metrics MetricRecorder) *Engine {
	return &Engine{
		cfg:      cfg,
		adapters: adapters,
		exec:     exec,
		policies: make(map[string]resilience.Policy),
		metrics:  metrics,
	}
}

func (e *Engine) SetPolicy(provider string, policy resilience.Policy) {
	e.policies[provider] = policy
}

// FetchFused returns the best topK items for ticker. Sources are queried
// strictly in configured order; when the first source alone already fills
// the quota after filtering, the remaining sources are skipped. One failing
// adapter never aborts the fan-out. topK and days fall back to config when
// non-positive.
func (e *Engine) FetchFused(ctx context.Context, ticker string, topK, days int) (items []news.Item, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = fmt.Errorf("fused fetch for %s: %v", ticker, r)
		}
		e.recordFetch(err == nil, time.Since(start))
	}()

	if topK <= 0 {
		topK = e.cfg.TopK
	}
	if days <= 0 {
		days = e.cfg.Days
	}

	var accumulated []news.Item
	seen := make(map[string]struct{})

	for i, key := range e.cfg.Sources {
		adapter, ok := e.adapters[key]
		if !ok {
			slog.Warn("unknown news source, skipping", "source", key)
			continue
		}

		// topK*2 headroom leaves room for downstream filtering.
		fetched, fetchErr := e.fetchSource(ctx, adapter, ticker, days, topK*2)
		if fetchErr != nil {
			slog.Error("source fetch failed", "source", key, "ticker", ticker, "error", fetchErr)
			continue
		}

		for _, item := range fetched {
			if item.URL == "" && item.Title == "" {
				continue
			}
			if urlKey := strings.ToLower(item.URL); urlKey != "" {
				if _, dup := seen[urlKey]; dup {
					continue
				}
				seen[urlKey] = struct{}{}
			}
			if item.Source == "" {
				item.Source = adapter.Name()
			}
			if item.SourceDomain == "" {
				item.SourceDomain = news.Domain(item.URL)
			}
			if item.Language == "" {
				item.Language = "en"
			}
			accumulated = append(accumulated, item)
		}

		// The first configured source is the cheapest / most authoritative
		// one; skip the rest when it already fills the quota.
		if i == 0 {
			if ranked := e.filterRank(accumulated); len(ranked) >= topK {
				return dedupeRanked(ranked, topK), nil
			}
		}
	}

	return dedupeRanked(e.filterRank(accumulated), topK), nil
}

func (e *Engine) fetchSource(ctx context.Context, adapter news.SourceAdapter, ticker string, days, limit int) ([]news.Item, error) {
	fetch := func(ctx context.Context) ([]news.Item, error) {
		return adapter.Fetch(ctx, ticker, days, limit, e.cfg.Timeout)
	}

	if e.exec == nil {
		return fetch(ctx)
	}

	policy, ok := e.policies[adapter.Name()]
	if !ok {
		policy = resilience.DefaultPolicy(adapter.Name())
	}
	return resilience.Do(ctx, e.exec, resilience.Call{
		JobType: "news_fetch",
		Ticker:  ticker,
		Policy:  policy,
	}, fetch)
}

type scoredItem struct {
	item  news.Item
	score float64
}

// filterRank applies the filter rules in order (language, hard block, domain
// policy, soft keyword block), scores survivors, and sorts by descending
// score with an ascending source-name tie-break.
func (e *Engine) filterRank(items []news.Item) []news.Item {
	var kept []scoredItem

	for _, item := range items {
		if strings.ToLower(item.Language) != e.cfg.Language {
			continue
		}

		title := strings.ToLower(item.Title)

		// Hard block overrides everything, the allowlist included.
		if containsAny(title, e.cfg.HardBlockKeywords) {
			continue
		}

		boost := 0.0
		if len(e.cfg.AllowlistDomains) > 0 {
			if _, allowed := e.cfg.AllowlistDomains[item.SourceDomain]; !allowed {
				continue
			}
			boost = domainBoost
		} else if _, blocked := e.cfg.BlocklistDomains[item.SourceDomain]; blocked {
			continue
		}

		if containsAny(title, e.cfg.BlocklistKeywords) {
			continue
		}

		score := boost
		if !item.PublishedAt.IsZero() {
			// Unknown publish time scores as epoch zero: the item sinks
			// to the bottom of its boost tier instead of being dropped.
			score += float64(item.PublishedAt.Unix())
		}
		kept = append(kept, scoredItem{item: item, score: score})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return strings.ToLower(kept[i].item.Source) < strings.ToLower(kept[j].item.Source)
	})

	ranked := make([]news.Item, len(kept))
	for i, s := range kept {
		ranked[i] = s.item
	}
	return ranked
}

// dedupeRanked keeps the first occurrence per URL (title when URL is empty),
// preserving rank order, truncated to topK.
func dedupeRanked(ranked []news.Item, topK int) []news.Item {
	seen := make(map[string]struct{}, len(ranked))
	out := make([]news.Item, 0, topK)

	for _, item := range ranked {
		key := strings.ToLower(item.URL)
		if key == "" {
			key = "title:" + strings.ToLower(item.Title)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, item)
		if len(out) == topK {
			break
		}
	}
	return out
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func (e *Engine) recordFetch(ok bool, latency time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordVendorEvent("fusion", "fetch_fused_news", ok, latency.Milliseconds())
}
