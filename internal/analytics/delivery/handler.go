package delivery

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"meetingprep-ai/internal/analytics/dto"
	"meetingprep-ai/internal/analytics/usecase"
	"meetingprep-ai/pkg/logging"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsUsecase usecase.AnalyticsUsecase
	now              func() time.Time
}

func NewAnalyticsHandler(analyticsUsecase usecase.AnalyticsUsecase) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsUsecase: analyticsUsecase, now: time.Now}
}

// Track handles POST /api/extension/analytics
func (h *AnalyticsHandler) Track(c *gin.Context) {
	var req dto.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Event type required"})
		return
	}

	event, err := h.analyticsUsecase.Track(&req)
	switch {
	case errors.Is(err, usecase.ErrEventTypeRequired):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Event type required"})
		return
	case errors.Is(err, usecase.ErrQueueFull):
		logging.From(c.Request.Context()).Warn("[Analytics] queue full, event dropped", "event_type", req.EventType)
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Analytics temporarily unavailable"})
		return
	case err != nil:
		logging.From(c.Request.Context()).Error("[Analytics] track failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return
	}

	c.JSON(http.StatusAccepted, dto.TrackEventResponse{Success: true, EventID: event.ID})
}

// Summary handles GET /api/analytics/summary?days=N
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 365 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "days must be between 1 and 365"})
			return
		}
		days = parsed
	}

	since := h.now().UTC().AddDate(0, 0, -days)
	counts, err := h.analyticsUsecase.Summary(since)
	if err != nil {
		logging.From(c.Request.Context()).Error("[Analytics] summary failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, dto.SummaryResponse{
		Success: true,
		Since:   since.Format(time.RFC3339),
		Counts:  counts,
	})
}
