package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"maintenance-status-backend/internal/engine"
	"maintenance-status-backend/internal/model"
	"maintenance-status-backend/internal/notification"
)

type createOrderRequest struct {
	MachineID   int64               `json:"machine_id" binding:"required"`
	Type        model.OrderType     `json:"type" binding:"required,oneof=corrective preventive"`
	Category    model.OrderCategory `json:"category" binding:"required,oneof=red green blue"`
	Description string              `json:"description"`
}

// CreateOrder handles POST /api/orders.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.store.CreateOrder(c.Request.Context(), req.MachineID, req.Type, req.Category, req.Description, requestID(c))
	if err != nil {
		abortEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

type receiveOrderRequest struct {
	Responsible string `json:"responsible" binding:"required"`
	Comment     string `json:"comment"`
}

// ReceiveOrder handles POST /api/orders/{id}/receive.
func (h *Handler) ReceiveOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	var req receiveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.store.ReceiveOrder(c.Request.Context(), orderID, req.Responsible, req.Comment, requestID(c))
	if err != nil {
		abortEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

type transitionOrderRequest struct {
	Status      model.OrderStatus `json:"status" binding:"required,oneof=queued in_progress on_hold done cancelled"`
	Comment     string            `json:"comment"`
	Responsible string            `json:"responsible"`
}

// TransitionOrder handles POST /api/orders/{id}/transition.
func (h *Handler) TransitionOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	var req transitionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.store.TransitionOrder(c.Request.Context(), orderID, req.Status, req.Comment, req.Responsible, requestID(c))
	if err != nil {
		abortEngineError(c, err)
		return
	}

	// Completing or cancelling an order may have returned its machine to
	// service; let the availability calculator decide and alert the
	// subscribers if so.
	if (req.Status == model.StatusDone || req.Status == model.StatusCancelled) && h.pool != nil {
		h.notifyIfAvailable(c, order.MachineID)
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) notifyIfAvailable(c *gin.Context, machineID int64) {
	ctx := c.Request.Context()

	var machine model.Machine
	if err := h.store.DB().WithContext(ctx).First(&machine, machineID).Error; err != nil {
		return
	}
	open, err := h.store.OpenCorrectiveOrders(ctx, machineID)
	if err != nil {
		return
	}
	if engine.AvailabilityOf(machine, open) == engine.Available {
		h.pool.Dispatch(notification.MachineAvailable(machineID, machine.Name))
	}
}

type reclassifyOrderRequest struct {
	Category model.OrderCategory `json:"category" binding:"required,oneof=red green blue"`
}

// ReclassifyOrder handles PATCH /api/orders/{id}/category.
func (h *Handler) ReclassifyOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	var req reclassifyOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.ReclassifyOrder(c.Request.Context(), orderID, req.Category); err != nil {
		abortEngineError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// orderResponse is an order with its timeline and the timings derived from it.
type orderResponse struct {
	model.MaintenanceOrder
	Timings timingsResponse `json:"timings"`
}

type timingsResponse struct {
	QueuedSeconds     float64 `json:"queuedSeconds"`
	InProgressSeconds float64 `json:"inProgressSeconds"`
	TotalSeconds      float64 `json:"totalSeconds"`
}

// GetOrder handles GET /api/orders/{id}.
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrderWithHistory(c.Request.Context(), orderID)
	if err != nil {
		abortEngineError(c, err)
		return
	}

	timings := engine.Timings(order, order.History, time.Now().UTC())
	c.JSON(http.StatusOK, orderResponse{
		MaintenanceOrder: order,
		Timings: timingsResponse{
			QueuedSeconds:     timings.Queued.Seconds(),
			InProgressSeconds: timings.InProgress.Seconds(),
			TotalSeconds:      timings.Total.Seconds(),
		},
	})
}
