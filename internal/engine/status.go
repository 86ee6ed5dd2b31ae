// Package engine holds the pure decision logic of the maintenance backend:
// the order state machine, availability derivation, stoppage time accounting,
// preventive scheduling and problem scoring. Everything here operates on data
// snapshots supplied by the caller; persistence is the store's concern.
package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"maintenance-status-backend/internal/model"
)

// ReceivedDefaultComment is recorded when maintenance receives an order
// without supplying its own comment.
const ReceivedDefaultComment = "chamado recebido na manutenção"

// allowedTransitions is the adjacency of the generic transition. Orders in
// "new" only leave through Receive; "cancelled" is terminal. "done" keeps a
// deliberate escape hatch back to in_progress for machines that break again
// after being marked fixed.
var allowedTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.StatusNew:        {},
	model.StatusQueued:     {model.StatusInProgress, model.StatusDone, model.StatusCancelled},
	model.StatusInProgress: {model.StatusQueued, model.StatusOnHold, model.StatusDone, model.StatusCancelled},
	model.StatusOnHold:     {model.StatusInProgress, model.StatusCancelled},
	model.StatusDone:       {model.StatusInProgress, model.StatusCancelled},
	model.StatusCancelled:  {},
}

// CanTransition reports whether the generic transition from one status to
// another is legal.
func CanTransition(from, to model.OrderStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionKey derives the idempotency key for one transition attempt. Two
// writes carrying the same key collapse into a single timeline entry.
func TransitionKey(orderID int64, target model.OrderStatus, requestID string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s", orderID, target, requestID)))
	return hex.EncodeToString(sum[:])
}

// Open returns a freshly submitted order together with its first timeline
// entry. The first entry has no previous status.
func Open(machineID int64, typ model.OrderType, category model.OrderCategory, description string, now time.Time, requestID string) (model.MaintenanceOrder, model.StatusHistoryEntry) {
	order := model.MaintenanceOrder{
		MachineID:   machineID,
		Type:        typ,
		Category:    category,
		Status:      model.StatusNew,
		Description: description,
		OpenedAt:    now,
	}
	entry := model.StatusHistoryEntry{
		IdempotencyKey: TransitionKey(machineID, model.StatusNew, requestID),
		NewStatus:      model.StatusNew,
		CreatedAt:      now,
	}
	return order, entry
}

// Receive moves a new order into in_progress, assigning the responsible and
// stamping received_at. It is the only way out of the "new" status.
func Receive(order model.MaintenanceOrder, responsible, comment string, now time.Time, requestID string) (model.MaintenanceOrder, model.StatusHistoryEntry, error) {
	if order.Status != model.StatusNew {
		return order, model.StatusHistoryEntry{}, fmt.Errorf("receive order %d in status %q: %w", order.ID, order.Status, ErrInvalidTransition)
	}
	if responsible == "" {
		return order, model.StatusHistoryEntry{}, fmt.Errorf("receive order %d: %w", order.ID, ErrMissingResponsible)
	}
	if comment == "" {
		comment = ReceivedDefaultComment
	}

	previous := order.Status
	order.Status = model.StatusInProgress
	order.Responsible = responsible
	order.ReceivedAt = &now

	entry := model.StatusHistoryEntry{
		OrderID:        order.ID,
		IdempotencyKey: TransitionKey(order.ID, model.StatusInProgress, requestID),
		PreviousStatus: &previous,
		NewStatus:      model.StatusInProgress,
		Comment:        comment,
		Responsible:    responsible,
		CreatedAt:      now,
	}
	return order, entry, nil
}

// Transition applies a generic status transition, returning the updated order
// and the timeline entry to append. A comment is mandatory when the order is
// sent to the queue, where it records the purchase order or outsourced
// service the order is waiting on.
func Transition(order model.MaintenanceOrder, target model.OrderStatus, comment, responsible string, now time.Time, requestID string) (model.MaintenanceOrder, model.StatusHistoryEntry, error) {
	if !CanTransition(order.Status, target) {
		return order, model.StatusHistoryEntry{}, fmt.Errorf("order %d: %q -> %q: %w", order.ID, order.Status, target, ErrInvalidTransition)
	}
	if target == model.StatusQueued && comment == "" {
		return order, model.StatusHistoryEntry{}, fmt.Errorf("order %d: transition to %q: %w", order.ID, target, ErrMissingComment)
	}

	previous := order.Status
	order.Status = target
	if responsible != "" {
		order.Responsible = responsible
	}

	// ClosedAt tracks the done status exactly: set on entry, cleared on
	// regression, re-set with a fresh timestamp on re-close.
	if target == model.StatusDone {
		if order.ClosedAt == nil {
			order.ClosedAt = &now
		}
	} else {
		order.ClosedAt = nil
	}

	entry := model.StatusHistoryEntry{
		OrderID:        order.ID,
		IdempotencyKey: TransitionKey(order.ID, target, requestID),
		PreviousStatus: &previous,
		NewStatus:      target,
		Comment:        comment,
		Responsible:    order.Responsible,
		CreatedAt:      now,
	}
	return order, entry, nil
}
