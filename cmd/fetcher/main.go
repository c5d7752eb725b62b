package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"

	"tickerfuse/db"
	"tickerfuse/internal/model"
	"tickerfuse/internal/repository"
	"tickerfuse/pkg/fusion"
	"tickerfuse/pkg/news"
	"tickerfuse/pkg/resilience"

	"github.com/joho/godotenv"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	err = db.ConnectRedis()
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	watchlist := splitWatchlist(os.Getenv("WATCHLIST"))
	if len(watchlist) == 0 {
		slog.Error("WATCHLIST is empty, nothing to fetch")
		return
	}

	cfg := fusion.LoadConfig()

	newsRepo := repository.NewNewsRepository(db.DB)
	incidentRepo := repository.NewIncidentRepository(db.DB)
	metricRepo := repository.NewMetricRepository(db.DB)

	exec := resilience.NewExecutor(resilience.NewLimiter(), incidentRepo, metricRepo)
	engine := fusion.NewEngine(cfg, news.DefaultRegistry(), exec, metricRepo)

	ctx := context.Background()

	for _, ticker := range watchlist {
		items, err := engine.FetchFused(ctx, ticker, cfg.TopK, cfg.Days)
		if err != nil {
			slog.Error("error fetching fused news", "ticker", ticker, "error", err)
			continue
		}

		var saved, duplicated, errors int

		for _, item := range items {
			stored := model.StoredItem{
				Ticker:       ticker,
				Title:        item.Title,
				URL:          item.URL,
				SourceDomain: item.SourceDomain,
				Source:       item.Source,
				Language:     item.Language,
				Snippet:      item.Snippet,
				PublishedAt:  item.PublishedAt,
			}

			success, err := newsRepo.SaveItem(&stored)
			if err != nil {
				slog.Error("error saving item", "ticker", ticker, "error", err)
				errors++
				continue
			}

			if !success {
				slog.Info("duplicate item skipped", "ticker", ticker, "url", item.URL)
				duplicated++
				continue
			}

			saved++
		}

		if saved > 0 {
			err = db.PushToQueue(db.BriefQueueKey, ticker)
			if err != nil {
				slog.Error("error pushing to Redis queue", "ticker", ticker, "error", err)
				errors++
			}
		}

		slog.Info("fetch complete", "ticker", ticker, "saved", saved, "duplicated", duplicated, "errors", errors)
	}
}

func splitWatchlist(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.ToUpper(strings.TrimSpace(part)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
