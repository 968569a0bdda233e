package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/rss-ledger/app/database"
	"github.com/samber/lo"
)

const (
	defaultHistoryLimit = 10
	allSources          = "all"
)

// NewHandler builds the read API handler. scheduler may be nil when no
// periodic ingestion runs in this process.
func NewHandler(store database.ReadStore, scheduler HealthReporter, version string) *Handler {
	return &Handler{
		store:     store,
		scheduler: scheduler,
		version:   version,
	}
}

// WithCache adds the raw feed cache to the health report.
func (h *Handler) WithCache(cache CacheHealthReporter) *Handler {
	h.cache = cache
	return h
}

func (h *Handler) GetNewsItems(c *gin.Context) {
	name := c.Param("name")

	var (
		records []database.Record
		err     error
	)
	if name == allSources {
		records, err = h.store.ListCurrent(c.Request.Context())
	} else {
		records, err = h.store.ListCurrentByName(c.Request.Context(), name)
	}
	if err != nil {
		slog.Error("Database error", "operation", "list_current", "name", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if name != allSources && len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("No news items found for the name '%s'.", name)})
		return
	}

	c.JSON(http.StatusOK, lo.Map(records, func(r database.Record, _ int) NewsItem {
		return newNewsItem(r)
	}))
}

func (h *Handler) GetHistory(c *gin.Context) {
	limit, limitErr := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	offset, offsetErr := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limitErr != nil || offsetErr != nil || limit < 1 || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit or offset"})
		return
	}

	records, err := h.store.ListHistorical(c.Request.Context(), limit, offset)
	if err != nil {
		slog.Error("Database error", "operation", "list_historical", "limit", limit, "offset", offset, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, lo.Map(records, func(r database.Record, _ int) NewsItem {
		return newNewsItem(r)
	}))
}

func (h *Handler) HealthCheck(c *gin.Context) {
	health := map[string]any{
		"status":    "healthy",
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	stats, err := h.store.GetStats(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		health["status"] = "unhealthy"
		health["database"] = map[string]any{"status": "unhealthy", "error": err.Error()}
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	health["database"] = map[string]any{
		"status":     "healthy",
		"historical": stats.Historical,
		"current":    stats.Current,
		"sources":    stats.Sources,
	}

	if h.scheduler != nil {
		health["scheduler"] = h.scheduler.Health()
	}

	if h.cache != nil {
		health["cache"] = h.cache.Health(c.Request.Context())
	}

	c.JSON(http.StatusOK, health)
}
