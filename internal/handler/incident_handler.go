package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tickerfuse/internal/model"

	"github.com/gin-gonic/gin"
)

type IncidentStore interface {
	ListUnresolved(limit int) ([]model.Incident, error)
}

type BriefStore interface {
	GetLatestBrief(ticker string) (*model.TickerBrief, error)
}

type OpsHandler struct {
	incidents IncidentStore
	briefs    BriefStore
}

func NewOpsHandler(incidents IncidentStore, briefs BriefStore) *OpsHandler {
	return &OpsHandler{incidents: incidents, briefs: briefs}
}

func (h *OpsHandler) GetIncidents(c *gin.Context) {
	limit := getQueryLimit(c)

	incidents, err := h.incidents.ListUnresolved(limit)
	if err != nil {
		slog.Error("error fetching incidents", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := make([]IncidentResponse, 0, len(incidents))
	for _, inc := range incidents {
		res = append(res, IncidentResponse{
			ID:           inc.ID,
			JobType:      inc.JobType,
			Provider:     inc.Provider,
			Event:        inc.Event,
			Ticker:       inc.Ticker,
			ErrorMessage: inc.ErrorMessage,
			CreatedAt:    inc.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *OpsHandler) GetLatestBrief(c *gin.Context) {
	ticker := strings.ToUpper(c.Query("ticker"))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing ticker"})
		return
	}

	brief, err := h.briefs.GetLatestBrief(ticker)
	if err != nil {
		slog.Error("error fetching brief", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if brief == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No brief available"})
		return
	}

	c.JSON(http.StatusOK, BriefResponse{
		ID:        brief.ID,
		Ticker:    brief.Ticker,
		Paragraph: brief.Paragraph,
		Bullets:   brief.Bullets,
		ItemCount: brief.ItemCount,
		ModelUsed: brief.ModelUsed,
		CreatedAt: brief.CreatedAt.Format(time.RFC3339),
	})
}
