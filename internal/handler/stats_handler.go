package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskpulse/internal/middleware"
	"taskpulse/internal/service"
)

type StatsHandler struct {
	stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Streak handles GET /stats/streak
func (h *StatsHandler) Streak(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	streak, err := h.stats.Streak(c.Request.Context(), ownerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak": streak})
}

// Timeseries handles GET /stats/timeseries?days=N
func (h *StatsHandler) Timeseries(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	days := service.DefaultTimeseriesDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days parameter"})
			return
		}
		days = parsed
	}

	series, err := h.stats.Timeseries(c.Request.Context(), ownerID, days)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timeseries": series})
}

// Priorities handles GET /stats/priorities
func (h *StatsHandler) Priorities(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	buckets, err := h.stats.PriorityBuckets(c.Request.Context(), ownerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"priorities": buckets})
}

// Summary handles GET /stats/summary
func (h *StatsHandler) Summary(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	summary, err := h.stats.Summarize(c.Request.Context(), ownerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Routines handles GET /stats/routines
func (h *StatsHandler) Routines(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	stats, err := h.stats.Routines(c.Request.Context(), ownerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
