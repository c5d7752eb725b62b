package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"tickerfuse/db"
	"tickerfuse/internal/model"
	"tickerfuse/internal/repository"
	"tickerfuse/pkg/llm"
	"tickerfuse/pkg/resilience"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	const briefItemLimit = 10

	err := db.ConnectRedis()
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	err = db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	newsRepo := repository.NewNewsRepository(db.DB)
	briefRepo := repository.NewBriefRepository(db.DB)
	incidentRepo := repository.NewIncidentRepository(db.DB)
	metricRepo := repository.NewMetricRepository(db.DB)

	exec := resilience.NewExecutor(resilience.NewLimiter(), incidentRepo, metricRepo)

	client := llm.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"))

	policy := resilience.DefaultPolicy("openai")
	policy.MaxPerMinute = 15

	ctx := context.Background()

	for {
		ticker, err := db.PopFromQueue(db.BriefQueueKey, 0)
		if err != nil {
			slog.Error("error popping from Redis queue", "error", err)
			break
		}

		items, err := newsRepo.GetRecentByTicker(ticker, briefItemLimit)
		if err != nil {
			slog.Error("error loading items for brief", "ticker", ticker, "error", err)
			continue
		}

		if len(items) == 0 {
			slog.Warn("no stored items for ticker, skipping brief", "ticker", ticker)
			continue
		}

		inputs := make([]llm.BriefInput, len(items))
		for i, item := range items {
			inputs[i] = llm.BriefInput{
				Headline:    item.Title,
				Snippet:     item.Snippet,
				Domain:      item.SourceDomain,
				PublishedAt: item.PublishedAt,
				URL:         item.URL,
			}
		}

		result, err := resilience.Do(ctx, exec, resilience.Call{
			JobType: "ticker_brief",
			Ticker:  ticker,
			Policy:  policy,
		}, func(ctx context.Context) (*llm.BriefResult, error) {
			return client.TickerBrief(ctx, ticker, inputs)
		})
		if err != nil {
			var exhausted *resilience.ExhaustedError
			if errors.As(err, &exhausted) {
				slog.Error("brief generation exhausted retries", "ticker", ticker, "attempts", exhausted.Attempts, "error", err)
			} else {
				slog.Error("error generating brief", "ticker", ticker, "error", err)
			}

			db.PushToQueue(db.DeadLetterKey, ticker)

			time.Sleep(5 * time.Second)
			continue
		}

		brief := model.TickerBrief{
			Ticker:    ticker,
			Paragraph: result.Paragraph,
			Bullets:   result.Bullets,
			ItemCount: len(items),
			ModelUsed: result.ModelUsed,
		}

		err = briefRepo.SaveBrief(&brief)
		if err != nil {
			slog.Error("error saving brief", "ticker", ticker, "error", err)
			continue
		}

		slog.Info("brief generated successfully", "ticker", ticker, "brief_id", brief.ID, "item_count", brief.ItemCount)
	}
}
