package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-status-backend/internal/engine"
)

// GetProblemScores handles GET /api/reports/problem-score: the full machine
// ranking, highest risk first.
func (h *Handler) GetProblemScores(c *gin.Context) {
	machines, orders, stoppages, err := h.store.ReportData(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve report data"})
		return
	}

	c.JSON(http.StatusOK, engine.ScoreMachines(machines, orders, stoppages))
}
