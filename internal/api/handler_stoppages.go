package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"maintenance-status-backend/internal/engine"
	"maintenance-status-backend/internal/model"
	"maintenance-status-backend/internal/store"
)

type createStoppageRequest struct {
	MachineID        int64                  `json:"machine_id" binding:"required"`
	OrderID          *int64                 `json:"order_id"`
	ReasonID         int64                  `json:"reason_id" binding:"required"`
	Date             string                 `json:"date" binding:"required"`
	Start            string                 `json:"start" binding:"required"`
	End              string                 `json:"end"`
	DurationHours    *float64               `json:"duration_hours"`
	RegistrationType model.RegistrationType `json:"registration_type"`
}

// CreateStoppage handles POST /api/stoppages. Callers supply either an end
// time or a duration; the stored duration is always the work-hours-clipped
// derivation, and a zero result means the interval was outside the working
// window, not that the request failed.
func (h *Handler) CreateStoppage(c *gin.Context) {
	var req createStoppageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
		return
	}

	start, err := engine.ParseTimeOfDay(req.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	storeReq := store.StoppageRequest{
		MachineID:        req.MachineID,
		OrderID:          req.OrderID,
		ReasonID:         req.ReasonID,
		Date:             date,
		Start:            start,
		DurationHours:    req.DurationHours,
		RegistrationType: req.RegistrationType,
	}
	if req.End != "" {
		end, err := engine.ParseTimeOfDay(req.End)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		storeReq.End = &end
	} else if req.DurationHours == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either end or duration_hours is required"})
		return
	}

	stoppage, err := h.store.RecordStoppage(c.Request.Context(), storeReq)
	if err != nil {
		abortEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, stoppage)
}
