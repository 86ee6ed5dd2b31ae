package model

import "time"

// RegistrationType records whether a stoppage was logged by an operator or by
// an automated integration.
type RegistrationType string

const (
	RegistrationManual    RegistrationType = "manual"
	RegistrationAutomatic RegistrationType = "automatic"
)

// Stoppage is a recorded interval during which a machine was not operating.
// Start and end are stored as minutes from midnight; DurationHours is always
// the work-hours-clipped derivation, never raw caller input.
type Stoppage struct {
	ID               int64            `gorm:"primaryKey" json:"id"`
	MachineID        int64            `gorm:"index;not null" json:"machineId"`
	OrderID          *int64           `gorm:"index" json:"orderId,omitempty"`
	ReasonID         int64            `gorm:"not null" json:"reasonId"`
	Date             time.Time        `gorm:"not null;index" json:"date"`
	StartMinute      int              `gorm:"not null" json:"startMinute"`
	EndMinute        int              `gorm:"not null" json:"endMinute"`
	DurationHours    float64          `gorm:"not null" json:"durationHours"`
	RegistrationType RegistrationType `gorm:"size:32;not null;default:'manual'" json:"registrationType"`
	CreatedAt        time.Time        `gorm:"not null" json:"createdAt"`
	UpdatedAt        time.Time        `gorm:"not null" json:"updatedAt"`
}

// DailyAvailableBudget tracks the remaining operable hours of a machine on a
// given date. Lazily created on first stoppage of the day; RemainingHours
// never goes below zero.
type DailyAvailableBudget struct {
	MachineID      int64     `gorm:"primaryKey" json:"machineId"`
	Date           time.Time `gorm:"primaryKey" json:"date"`
	RemainingHours float64   `gorm:"not null" json:"remainingHours"`
}
