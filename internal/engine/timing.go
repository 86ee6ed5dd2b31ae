package engine

import (
	"time"

	"maintenance-status-backend/internal/model"
)

// OrderTimings summarizes how long an order spent in each accountable status.
// Queued and InProgress are accumulated from the ordered timeline, so gaps
// such as on_hold count toward neither.
type OrderTimings struct {
	Queued     time.Duration `json:"queued"`
	InProgress time.Duration `json:"inProgress"`
	Total      time.Duration `json:"total"`
}

// Timings walks the ordered timeline of an order and accumulates the time
// spent queued and in progress. The open-ended segment of a still-active
// order runs until now; Total runs from opened_at until closed_at, or now
// while the order remains open.
func Timings(order model.MaintenanceOrder, history []model.StatusHistoryEntry, now time.Time) OrderTimings {
	var t OrderTimings

	for i, entry := range history {
		segmentEnd := now
		if i+1 < len(history) {
			segmentEnd = history[i+1].CreatedAt
		}
		if segmentEnd.Before(entry.CreatedAt) {
			continue
		}
		switch entry.NewStatus {
		case model.StatusQueued:
			t.Queued += segmentEnd.Sub(entry.CreatedAt)
		case model.StatusInProgress:
			t.InProgress += segmentEnd.Sub(entry.CreatedAt)
		}
	}

	end := now
	if order.ClosedAt != nil {
		end = *order.ClosedAt
	}
	if end.After(order.OpenedAt) {
		t.Total = end.Sub(order.OpenedAt)
	}
	return t
}
