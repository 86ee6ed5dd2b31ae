package model

import "time"

// OrderType distinguishes reactive repair work from scheduled preventive work.
type OrderType string

const (
	OrderCorrective OrderType = "corrective"
	OrderPreventive OrderType = "preventive"
)

// OrderCategory is the urgency/execution class of an order (who executes it).
// It is independent of the order's status.
type OrderCategory string

const (
	CategoryRed   OrderCategory = "red"
	CategoryGreen OrderCategory = "green"
	CategoryBlue  OrderCategory = "blue"
)

// OrderStatus is the lifecycle state of a maintenance order.
type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusQueued     OrderStatus = "queued"
	StatusInProgress OrderStatus = "in_progress"
	StatusOnHold     OrderStatus = "on_hold"
	StatusDone       OrderStatus = "done"
	StatusCancelled  OrderStatus = "cancelled"
)

// MaintenanceOrder is a unit of requested work against a machine.
// Its status is only ever mutated through the engine's transition functions;
// ClosedAt is non-nil exactly while Status is done.
type MaintenanceOrder struct {
	ID          int64         `gorm:"primaryKey" json:"id"`
	MachineID   int64         `gorm:"index;not null" json:"machineId"`
	Type        OrderType     `gorm:"size:32;not null" json:"type"`
	Category    OrderCategory `gorm:"size:32;not null" json:"category"`
	Status      OrderStatus   `gorm:"size:32;not null;index" json:"status"`
	Description string        `gorm:"size:1024" json:"description,omitempty"`
	Responsible string        `gorm:"size:256" json:"responsible,omitempty"`
	OpenedAt    time.Time     `gorm:"not null" json:"openedAt"`
	ReceivedAt  *time.Time    `json:"receivedAt,omitempty"`
	ClosedAt    *time.Time    `json:"closedAt,omitempty"`
	CreatedAt   time.Time     `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time     `gorm:"not null" json:"updatedAt"`

	// Associations
	Machine Machine              `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	History []StatusHistoryEntry `gorm:"foreignKey:OrderID" json:"history,omitempty"`
}

// StatusHistoryEntry is one immutable line of an order's audit timeline.
// The unique idempotency key makes the insert safe against at-least-once
// writers: a duplicate write of the same transition is a no-op.
type StatusHistoryEntry struct {
	ID             int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID        int64        `gorm:"index;not null" json:"orderId"`
	IdempotencyKey string       `gorm:"size:64;uniqueIndex;not null" json:"-"`
	PreviousStatus *OrderStatus `gorm:"size:32" json:"previousStatus,omitempty"`
	NewStatus      OrderStatus  `gorm:"size:32;not null" json:"newStatus"`
	Comment        string       `gorm:"size:1024" json:"comment,omitempty"`
	Responsible    string       `gorm:"size:256" json:"responsible,omitempty"`
	CreatedAt      time.Time    `gorm:"not null;index" json:"createdAt"`
}
