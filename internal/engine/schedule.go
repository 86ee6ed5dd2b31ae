package engine

import (
	"sort"
	"time"

	"maintenance-status-backend/internal/model"
)

// DefaultMaintenancePeriodDays is the preventive cadence used for machines
// without an explicit period of their own.
const DefaultMaintenancePeriodDays = 30

// PreventiveDueItem is one upcoming preventive obligation: a machine/kind
// pair whose due date falls inside the notice window. Derived on each pass,
// never persisted.
type PreventiveDueItem struct {
	MachineID   int64               `json:"machineId"`
	MachineName string              `json:"machineName"`
	Kind        model.ChecklistKind `json:"kind"`
	DueDate     time.Time           `json:"dueDate"`
	Label       string              `json:"label"`
}

// DueItems computes the rolling "needs attention soon" list.
//
// Maintenance-kind items come due maintenance_period_days after the machine's
// most recently closed preventive order (lastPreventive), falling back to the
// machine's creation date when it has no preventive history. Machines without
// a period of their own use fallbackPeriodDays (or
// DefaultMaintenancePeriodDays when that is unset too). Cleaning-kind items
// track the machine's standing next_cleaning_date directly. A machine
// surfaces at most one item per kind, and only while
// today <= due date <= today+windowDays.
func DueItems(machines []model.Machine, lastPreventive map[int64]time.Time, today time.Time, windowDays, fallbackPeriodDays int) []PreventiveDueItem {
	if fallbackPeriodDays <= 0 {
		fallbackPeriodDays = DefaultMaintenancePeriodDays
	}
	today = DateOnly(today)
	horizon := today.AddDate(0, 0, windowDays)

	var due []PreventiveDueItem
	for _, m := range machines {
		if label, ok := checklistLabel(m, model.ChecklistMaintenance); ok {
			reference := m.CreatedAt
			if closed, ok := lastPreventive[m.ID]; ok {
				reference = closed
			}
			period := m.MaintenancePeriodDays
			if period <= 0 {
				period = fallbackPeriodDays
			}
			dueDate := DateOnly(reference).AddDate(0, 0, period)
			if inWindow(dueDate, today, horizon) {
				due = append(due, PreventiveDueItem{
					MachineID:   m.ID,
					MachineName: m.Name,
					Kind:        model.ChecklistMaintenance,
					DueDate:     dueDate,
					Label:       label,
				})
			}
		}

		if label, ok := checklistLabel(m, model.ChecklistCleaning); ok && m.NextCleaningDate != nil {
			dueDate := DateOnly(*m.NextCleaningDate)
			if inWindow(dueDate, today, horizon) {
				due = append(due, PreventiveDueItem{
					MachineID:   m.ID,
					MachineName: m.Name,
					Kind:        model.ChecklistCleaning,
					DueDate:     dueDate,
					Label:       label,
				})
			}
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueDate.Equal(due[j].DueDate) {
			return due[i].DueDate.Before(due[j].DueDate)
		}
		return due[i].MachineID < due[j].MachineID
	})
	return due
}

// DateOnly truncates a timestamp to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func inWindow(due, today, horizon time.Time) bool {
	return !due.Before(today) && !due.After(horizon)
}

// checklistLabel returns the description of the machine's first checklist
// item of the given kind, in configured order.
func checklistLabel(m model.Machine, kind model.ChecklistKind) (string, bool) {
	best := -1
	label := ""
	for _, item := range m.ChecklistItems {
		if item.Kind != kind {
			continue
		}
		if best == -1 || item.Position < best {
			best = item.Position
			label = item.Description
		}
	}
	return label, best != -1
}
