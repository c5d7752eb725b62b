package main

import (
	"log"
	"log/slog"
	"os"

	"tickerfuse/db"
	"tickerfuse/internal/handler"
	"tickerfuse/internal/repository"
	"tickerfuse/pkg/fusion"
	"tickerfuse/pkg/news"
	"tickerfuse/pkg/resilience"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
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

	newsRepo := repository.NewNewsRepository(db.DB)
	incidentRepo := repository.NewIncidentRepository(db.DB)
	briefRepo := repository.NewBriefRepository(db.DB)
	metricRepo := repository.NewMetricRepository(db.DB)

	exec := resilience.NewExecutor(resilience.NewLimiter(), incidentRepo, metricRepo)
	engine := fusion.NewEngine(fusion.LoadConfig(), news.DefaultRegistry(), exec, metricRepo)

	newsHandler := handler.NewNewsHandler(engine, newsRepo)
	opsHandler := handler.NewOpsHandler(incidentRepo, briefRepo)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.GET("/news/:ticker", newsHandler.GetNews)
	r.GET("/articles", newsHandler.GetFeed)
	r.GET("/briefs/latest", opsHandler.GetLatestBrief)
	r.GET("/incidents", opsHandler.GetIncidents)
	r.GET("/health", newsHandler.GetHealth)

	err = r.Run(":8080")
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
