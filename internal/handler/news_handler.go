package handler

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tickerfuse/internal/model"
	"tickerfuse/pkg/news"

	"github.com/gin-gonic/gin"
)

type Fuser interface {
	FetchFused(ctx context.Context, ticker string, topK, days int) ([]news.Item, error)
}

type ItemStore interface {
	GetFeed(limit, offset int) ([]model.StoredItem, error)
	GetFeedTotal() (int, error)
}

type NewsHandler struct {
	fuser Fuser
	store ItemStore
}

func NewNewsHandler(fuser Fuser, store ItemStore) *NewsHandler {
	return &NewsHandler{fuser: fuser, store: store}
}

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.\-]{1,10}$`)

// GetNews runs a live fused fetch for one ticker. An empty result is a
// normal outcome, not an error.
func (h *NewsHandler) GetNews(c *gin.Context) {
	ticker := strings.ToUpper(c.Param("ticker"))
	if !tickerPattern.MatchString(ticker) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticker"})
		return
	}

	topK := getQueryInt("top_k", 0, c)
	days := getQueryInt("days", 0, c)

	items, err := h.fuser.FetchFused(c.Request.Context(), ticker, topK, days)
	if err != nil {
		slog.Error("error fetching fused news", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Fetch error"})
		return
	}

	res := NewsResponse{
		Ticker: ticker,
		Items:  make([]ItemResponse, 0, len(items)),
		Count:  len(items),
	}
	for _, item := range items {
		ir := ItemResponse{
			Title:        item.Title,
			URL:          item.URL,
			SourceDomain: item.SourceDomain,
			Language:     item.Language,
			Snippet:      item.Snippet,
			Source:       item.Source,
		}
		if !item.PublishedAt.IsZero() {
			ir.PublishedAt = item.PublishedAt.Format(time.RFC3339)
		}
		res.Items = append(res.Items, ir)
	}

	c.JSON(http.StatusOK, res)
}

func (h *NewsHandler) GetFeed(c *gin.Context) {
	limit := getQueryLimit(c)
	offset := getQueryOffset(c)

	items, err := h.store.GetFeed(limit, offset)
	if err != nil {
		slog.Error("error fetching feed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	total, err := h.store.GetFeedTotal()
	if err != nil {
		slog.Error("error fetching feed total", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := FeedResponse{
		Items:  make([]StoredItemResponse, 0, len(items)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, item := range items {
		res.Items = append(res.Items, StoredItemResponse{
			ID:           item.ID,
			Ticker:       item.Ticker,
			Title:        item.Title,
			URL:          item.URL,
			SourceDomain: item.SourceDomain,
			Source:       item.Source,
			PublishedAt:  item.PublishedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *NewsHandler) GetHealth(c *gin.Context) {
	_, err := h.store.GetFeedTotal()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

func getQueryInt(name string, defaultValue int, c *gin.Context) int {
	param := c.Query(name)

	if param == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(param)
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", name, "value", param, "error", err)
		return defaultValue
	}

	return parsed
}

func getQueryLimit(c *gin.Context) int {
	const (
		defaultLimit = 10
		maxLimit     = 100
	)

	limit := getQueryInt("limit", defaultLimit, c)
	if limit < 1 {
		slog.Warn("invalid query parameter, using default", "param", "limit", "value", limit, "default", defaultLimit)
		return defaultLimit
	}

	if limit > maxLimit {
		slog.Warn("query parameter exceeds max, clamping", "param", "limit", "value", limit, "max", maxLimit)
		return maxLimit
	}

	return limit
}

func getQueryOffset(c *gin.Context) int {
	offset := getQueryInt("offset", 0, c)
	if offset < 0 {
		slog.Warn("invalid query parameter, using default", "param", "offset", "value", offset, "default", 0)
		return 0
	}
	return offset
}
