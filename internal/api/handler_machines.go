package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"maintenance-status-backend/internal/engine"
	"maintenance-status-backend/internal/model"
)

// machineResponse is a machine with its derived availability. Every caller
// goes through the same calculator; there is no second opinion.
type machineResponse struct {
	model.Machine
	Availability engine.Availability `json:"availability"`
	OpenOrders   int                 `json:"openOrders"`
}

// ListMachines handles GET /api/machines.
func (h *Handler) ListMachines(c *gin.Context) {
	ctx := c.Request.Context()

	machines, err := h.store.Machines(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve machines"})
		return
	}

	openByMachine, err := h.store.OpenOrdersByMachine(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve open orders"})
		return
	}

	response := make([]machineResponse, 0, len(machines))
	for _, m := range machines {
		open := openByMachine[m.ID]
		response = append(response, machineResponse{
			Machine:      m,
			Availability: engine.AvailabilityOf(m, open),
			OpenOrders:   len(open),
		})
	}
	c.JSON(http.StatusOK, response)
}

type setMachineStatusRequest struct {
	Status model.ManualStatus `json:"status" binding:"required,oneof=available deactivated inactive"`
	Reason string             `json:"reason"`
}

// SetMachineStatus handles PUT /api/machines/{id}/status.
func (h *Handler) SetMachineStatus(c *gin.Context) {
	machineID, err := strconv.ParseInt(c.Param("machine_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid machine ID"})
		return
	}

	var req setMachineStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	machine, err := h.store.SetMachineStatus(c.Request.Context(), machineID, req.Status, req.Reason)
	if err != nil {
		abortEngineError(c, err)
		return
	}

	open, err := h.store.OpenCorrectiveOrders(c.Request.Context(), machineID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve open orders"})
		return
	}

	c.JSON(http.StatusOK, machineResponse{
		Machine:      machine,
		Availability: engine.AvailabilityOf(machine, open),
		OpenOrders:   len(open),
	})
}
