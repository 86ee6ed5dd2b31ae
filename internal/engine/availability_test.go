package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintenance-status-backend/internal/model"
)

func TestAvailabilityOf(t *testing.T) {
	openCorrective := model.MaintenanceOrder{Type: model.OrderCorrective, Status: model.StatusInProgress}
	closedCorrective := model.MaintenanceOrder{Type: model.OrderCorrective, Status: model.StatusDone}
	cancelledCorrective := model.MaintenanceOrder{Type: model.OrderCorrective, Status: model.StatusCancelled}
	openPreventive := model.MaintenanceOrder{Type: model.OrderPreventive, Status: model.StatusQueued}

	testCases := []struct {
		name     string
		manual   model.ManualStatus
		orders   []model.MaintenanceOrder
		expected Availability
	}{
		{"no orders, available", model.ManualAvailable, nil, Available},
		{"open corrective puts machine in maintenance", model.ManualAvailable, []model.MaintenanceOrder{openCorrective}, InMaintenance},
		{"closed corrective does not count", model.ManualAvailable, []model.MaintenanceOrder{closedCorrective, cancelledCorrective}, Available},
		{"preventive orders never affect availability", model.ManualAvailable, []model.MaintenanceOrder{openPreventive}, Available},
		{"deactivated without open work", model.ManualDeactivated, []model.MaintenanceOrder{closedCorrective}, Deactivated},
		{"deactivated with open work shows maintenance", model.ManualDeactivated, []model.MaintenanceOrder{openCorrective}, InMaintenance},
		{"inactive wins over open orders", model.ManualInactive, []model.MaintenanceOrder{openCorrective}, Inactive},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			machine := model.Machine{ID: 1, ManualStatus: tc.manual}
			assert.Equal(t, tc.expected, AvailabilityOf(machine, tc.orders))
		})
	}
}

func TestSetManualStatus(t *testing.T) {
	t.Run("inactivation requires a reason", func(t *testing.T) {
		machine := model.Machine{ID: 1, ManualStatus: model.ManualAvailable}
		_, err := SetManualStatus(machine, model.ManualInactive, "")
		assert.ErrorIs(t, err, ErrMissingInactivationReason)
	})

	t.Run("reason is kept while inactive and cleared afterwards", func(t *testing.T) {
		machine := model.Machine{ID: 1, ManualStatus: model.ManualAvailable}

		machine, err := SetManualStatus(machine, model.ManualInactive, "aguardando descarte")
		require.NoError(t, err)
		assert.Equal(t, "aguardando descarte", machine.InactivationReason)

		machine, err = SetManualStatus(machine, model.ManualAvailable, "")
		require.NoError(t, err)
		assert.Empty(t, machine.InactivationReason)
	})
}
