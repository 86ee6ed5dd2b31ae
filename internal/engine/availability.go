package engine

import (
	"fmt"

	"maintenance-status-backend/internal/model"
)

// Availability is a machine's live operational status, derived from its
// manual status and its open corrective orders.
type Availability string

const (
	Available     Availability = "available"
	InMaintenance Availability = "in_maintenance"
	Deactivated   Availability = "deactivated"
	Inactive      Availability = "inactive"
)

// IsOpen reports whether an order still demands work.
func IsOpen(order model.MaintenanceOrder) bool {
	return order.Status != model.StatusDone && order.Status != model.StatusCancelled
}

// AvailabilityOf derives the effective status of a machine. Only open
// corrective orders count; preventive orders never take a machine out of
// service. First match wins:
//
//  1. manually inactive machines stay inactive no matter what,
//  2. a deactivated machine with open corrective work shows as in maintenance,
//  3. a deactivated machine without it stays deactivated,
//  4. open corrective work puts an otherwise available machine in maintenance.
func AvailabilityOf(machine model.Machine, orders []model.MaintenanceOrder) Availability {
	hasOpenCorrective := false
	for _, o := range orders {
		if o.Type == model.OrderCorrective && IsOpen(o) {
			hasOpenCorrective = true
			break
		}
	}

	switch {
	case machine.ManualStatus == model.ManualInactive:
		return Inactive
	case machine.ManualStatus == model.ManualDeactivated && hasOpenCorrective:
		return InMaintenance
	case machine.ManualStatus == model.ManualDeactivated:
		return Deactivated
	case hasOpenCorrective:
		return InMaintenance
	default:
		return Available
	}
}

// SetManualStatus applies an operator status change to a machine. Inactivating
// a machine requires a reason; moving it to any other status clears it.
func SetManualStatus(machine model.Machine, status model.ManualStatus, reason string) (model.Machine, error) {
	if status == model.ManualInactive && reason == "" {
		return machine, fmt.Errorf("machine %d: %w", machine.ID, ErrMissingInactivationReason)
	}

	machine.ManualStatus = status
	if status == model.ManualInactive {
		machine.InactivationReason = reason
	} else {
		machine.InactivationReason = ""
	}
	return machine, nil
}
