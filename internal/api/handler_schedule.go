package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"maintenance-status-backend/internal/engine"
)

// GetDueItems handles GET /api/schedule/due. The optional "window" query
// overrides the configured notice window in days.
func (h *Handler) GetDueItems(c *gin.Context) {
	window := h.cfg.Engine.NoticeWindowDays
	if raw := c.Query("window"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window"})
			return
		}
		window = parsed
	}

	ctx := c.Request.Context()
	machines, err := h.store.Machines(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve machines"})
		return
	}
	lastPreventive, err := h.store.LastClosedPreventive(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve preventive history"})
		return
	}

	due := engine.DueItems(machines, lastPreventive, time.Now().UTC(), window, h.cfg.Engine.MaintenancePeriodDays)
	c.JSON(http.StatusOK, gin.H{"window_days": window, "items": due})
}
