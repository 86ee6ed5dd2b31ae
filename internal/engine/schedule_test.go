package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintenance-status-backend/internal/model"
)

func maintenanceMachine(id int64, name string, created time.Time, periodDays int) model.Machine {
	return model.Machine{
		ID:                    id,
		Name:                  name,
		CreatedAt:             created,
		MaintenancePeriodDays: periodDays,
		ChecklistItems: []model.ChecklistItem{
			{Position: 1, Description: "lubrificação geral", Kind: model.ChecklistMaintenance},
		},
	}
}

func TestDueItems(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 42, 0, 0, time.UTC)

	t.Run("item outside the notice window is omitted until it enters", func(t *testing.T) {
		// Last preventive closed 22 days before a 30-day period: due in 8 days.
		lastClosed := today.AddDate(0, 0, -22)
		m := maintenanceMachine(1, "Prensa 01", today.AddDate(-1, 0, 0), 30)
		history := map[int64]time.Time{1: lastClosed}

		assert.Empty(t, DueItems([]model.Machine{m}, history, today, 7, 0))

		due := DueItems([]model.Machine{m}, history, today, 8, 0)
		require.Len(t, due, 1)
		assert.Equal(t, DateOnly(lastClosed).AddDate(0, 0, 30), due[0].DueDate)
		assert.Equal(t, "lubrificação geral", due[0].Label)
	})

	t.Run("machine creation date is the fallback reference", func(t *testing.T) {
		m := maintenanceMachine(2, "Torno 02", today.AddDate(0, 0, -28), 30)

		due := DueItems([]model.Machine{m}, nil, today, 7, 0)
		require.Len(t, due, 1)
		assert.Equal(t, DateOnly(today).AddDate(0, 0, 2), due[0].DueDate)
	})

	t.Run("configured fallback period applies to machines without one", func(t *testing.T) {
		// No period of its own: a 14-day fallback puts the due date inside
		// the window, the 30-day default would not.
		m := maintenanceMachine(8, "Dobradeira 08", today.AddDate(0, 0, -10), 0)

		assert.Empty(t, DueItems([]model.Machine{m}, nil, today, 7, 0))

		due := DueItems([]model.Machine{m}, nil, today, 7, 14)
		require.Len(t, due, 1)
		assert.Equal(t, DateOnly(today).AddDate(0, 0, 4), due[0].DueDate)
	})

	t.Run("overdue items are not surfaced", func(t *testing.T) {
		m := maintenanceMachine(3, "Fresa 03", today.AddDate(0, 0, -45), 30)
		assert.Empty(t, DueItems([]model.Machine{m}, nil, today, 7, 0))
	})

	t.Run("cleaning follows the standing next date", func(t *testing.T) {
		next := DateOnly(today).AddDate(0, 0, 3)
		m := model.Machine{
			ID:               4,
			Name:             "Injetora 04",
			NextCleaningDate: &next,
			ChecklistItems: []model.ChecklistItem{
				{Position: 1, Description: "limpeza do filtro", Kind: model.ChecklistCleaning},
			},
		}

		due := DueItems([]model.Machine{m}, nil, today, 7, 0)
		require.Len(t, due, 1)
		assert.Equal(t, model.ChecklistCleaning, due[0].Kind)
		assert.Equal(t, next, due[0].DueDate)
	})

	t.Run("machines without a cleaning date emit no cleaning item", func(t *testing.T) {
		m := model.Machine{
			ID:   5,
			Name: "Serra 05",
			ChecklistItems: []model.ChecklistItem{
				{Position: 1, Description: "limpeza do filtro", Kind: model.ChecklistCleaning},
			},
		}
		assert.Empty(t, DueItems([]model.Machine{m}, nil, today, 7, 0))
	})

	t.Run("result is sorted ascending by due date", func(t *testing.T) {
		soon := DateOnly(today).AddDate(0, 0, 1)
		later := DateOnly(today).AddDate(0, 0, 5)
		a := model.Machine{
			ID: 6, Name: "A", NextCleaningDate: &later,
			ChecklistItems: []model.ChecklistItem{{Position: 1, Description: "limpeza", Kind: model.ChecklistCleaning}},
		}
		b := model.Machine{
			ID: 7, Name: "B", NextCleaningDate: &soon,
			ChecklistItems: []model.ChecklistItem{{Position: 1, Description: "limpeza", Kind: model.ChecklistCleaning}},
		}

		due := DueItems([]model.Machine{a, b}, nil, today, 7, 0)
		require.Len(t, due, 2)
		assert.Equal(t, int64(7), due[0].MachineID)
		assert.Equal(t, int64(6), due[1].MachineID)
	})
}
