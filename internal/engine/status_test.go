package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintenance-status-backend/internal/model"
)

func TestCanTransition(t *testing.T) {
	testCases := []struct {
		name    string
		from    model.OrderStatus
		to      model.OrderStatus
		allowed bool
	}{
		{"new cannot skip receive", model.StatusNew, model.StatusQueued, false},
		{"new cannot be completed directly", model.StatusNew, model.StatusDone, false},
		{"queued to in_progress", model.StatusQueued, model.StatusInProgress, true},
		{"in_progress back to queued", model.StatusInProgress, model.StatusQueued, true},
		{"queued to done", model.StatusQueued, model.StatusDone, true},
		{"in_progress to done", model.StatusInProgress, model.StatusDone, true},
		{"in_progress to on_hold", model.StatusInProgress, model.StatusOnHold, true},
		{"on_hold resumes to in_progress", model.StatusOnHold, model.StatusInProgress, true},
		{"on_hold cannot complete directly", model.StatusOnHold, model.StatusDone, false},
		{"done reopens to in_progress", model.StatusDone, model.StatusInProgress, true},
		{"done to cancelled", model.StatusDone, model.StatusCancelled, true},
		{"done cannot go back to queued", model.StatusDone, model.StatusQueued, false},
		{"cancelled is terminal", model.StatusCancelled, model.StatusInProgress, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to))
		})
	}
}

func TestReceive(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	t.Run("assigns responsible and stamps received_at", func(t *testing.T) {
		order := model.MaintenanceOrder{ID: 7, Status: model.StatusNew, OpenedAt: now.Add(-time.Hour)}

		updated, entry, err := Receive(order, "João", "", now, "req-1")
		require.NoError(t, err)

		assert.Equal(t, model.StatusInProgress, updated.Status)
		assert.Equal(t, "João", updated.Responsible)
		require.NotNil(t, updated.ReceivedAt)
		assert.Equal(t, now, *updated.ReceivedAt)

		assert.Equal(t, ReceivedDefaultComment, entry.Comment)
		require.NotNil(t, entry.PreviousStatus)
		assert.Equal(t, model.StatusNew, *entry.PreviousStatus)
		assert.Equal(t, model.StatusInProgress, entry.NewStatus)
	})

	t.Run("keeps the caller's comment when given", func(t *testing.T) {
		order := model.MaintenanceOrder{ID: 7, Status: model.StatusNew}
		_, entry, err := Receive(order, "João", "peça em estoque", now, "req-2")
		require.NoError(t, err)
		assert.Equal(t, "peça em estoque", entry.Comment)
	})

	t.Run("requires a responsible", func(t *testing.T) {
		order := model.MaintenanceOrder{ID: 7, Status: model.StatusNew}
		_, _, err := Receive(order, "", "", now, "req-3")
		assert.ErrorIs(t, err, ErrMissingResponsible)
	})

	t.Run("rejects orders that are not new", func(t *testing.T) {
		order := model.MaintenanceOrder{ID: 7, Status: model.StatusInProgress}
		_, _, err := Receive(order, "João", "", now, "req-4")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestTransition(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("queued requires a comment", func(t *testing.T) {
		order := model.MaintenanceOrder{ID: 3, Status: model.StatusInProgress}
		_, _, err := Transition(order, model.StatusQueued, "", "", now, "req-1")
		assert.ErrorIs(t, err, ErrMissingComment)

		_, entry, err := Transition(order, model.StatusQueued, "OC 4431", "", now, "req-1")
		require.NoError(t, err)
		assert.Equal(t, "OC 4431", entry.Comment)
	})

	t.Run("illegal edge fails", func(t *testing.T) {
		order := model.MaintenanceOrder{ID: 3, Status: model.StatusNew}
		_, _, err := Transition(order, model.StatusQueued, "OC 4431", "", now, "req-2")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("closed_at follows done across reopen and re-close", func(t *testing.T) {
		order := model.MaintenanceOrder{ID: 3, Status: model.StatusInProgress}

		order, _, err := Transition(order, model.StatusDone, "", "", now, "req-3")
		require.NoError(t, err)
		require.NotNil(t, order.ClosedAt)
		firstClose := *order.ClosedAt

		order, _, err = Transition(order, model.StatusInProgress, "quebrou de novo", "", now.Add(time.Hour), "req-4")
		require.NoError(t, err)
		assert.Nil(t, order.ClosedAt)

		reclose := now.Add(3 * time.Hour)
		order, _, err = Transition(order, model.StatusDone, "", "", reclose, "req-5")
		require.NoError(t, err)
		require.NotNil(t, order.ClosedAt)
		assert.Equal(t, reclose, *order.ClosedAt)
		assert.NotEqual(t, firstClose, *order.ClosedAt)
	})

	t.Run("responsible override sticks to the order", func(t *testing.T) {
		order := model.MaintenanceOrder{ID: 3, Status: model.StatusInProgress, Responsible: "João"}
		order, entry, err := Transition(order, model.StatusDone, "", "Maria", now, "req-6")
		require.NoError(t, err)
		assert.Equal(t, "Maria", order.Responsible)
		assert.Equal(t, "Maria", entry.Responsible)
	})
}

func TestTransitionKey(t *testing.T) {
	a := TransitionKey(1, model.StatusDone, "req-1")
	b := TransitionKey(1, model.StatusDone, "req-1")
	c := TransitionKey(1, model.StatusDone, "req-2")

	assert.Equal(t, a, b, "same transition attempt must produce the same key")
	assert.NotEqual(t, a, c, "distinct requests must produce distinct keys")
	assert.Len(t, a, 64)
}
