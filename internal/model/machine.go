package model

import "time"

// ManualStatus is the operator-set status of a machine, as opposed to the
// availability derived from it and the machine's open corrective orders.
type ManualStatus string

const (
	ManualAvailable   ManualStatus = "available"
	ManualDeactivated ManualStatus = "deactivated"
	ManualInactive    ManualStatus = "inactive"
)

// MachineCategory classifies how much a machine matters to production.
type MachineCategory string

const (
	CategoryCritical MachineCategory = "critical"
	CategoryNormal   MachineCategory = "normal"
)

// ChecklistKind distinguishes the two preventive checklist item families.
type ChecklistKind string

const (
	ChecklistCleaning    ChecklistKind = "cleaning"
	ChecklistMaintenance ChecklistKind = "maintenance"
)

// Machine represents a piece of industrial machinery in the maintenance catalog.
type Machine struct {
	ID                    int64           `gorm:"primaryKey" json:"id"`
	Name                  string          `gorm:"size:256;not null" json:"name"`
	ManualStatus          ManualStatus    `gorm:"size:32;not null;default:'available'" json:"manualStatus"`
	Category              MachineCategory `gorm:"size:32;not null;default:'normal'" json:"category"`
	DailyAvailableHours   float64         `json:"dailyAvailableHours"`
	InactivationReason    string          `gorm:"size:512" json:"inactivationReason,omitempty"`
	MaintenancePeriodDays int             `gorm:"not null;default:30" json:"maintenancePeriodDays"`
	NextCleaningDate      *time.Time      `json:"nextCleaningDate,omitempty"`
	CreatedAt             time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt             time.Time       `gorm:"not null" json:"updatedAt"`

	// Associations
	ChecklistItems []ChecklistItem  `gorm:"foreignKey:MachineID" json:"checklistItems,omitempty"`
	StopReasons    []StoppageReason `gorm:"foreignKey:MachineID" json:"stopReasons,omitempty"`
}

// ChecklistItem is one entry of a machine's preventive checklist. Position
// preserves the order the items were configured in.
type ChecklistItem struct {
	ID          int64         `gorm:"primaryKey" json:"id"`
	MachineID   int64         `gorm:"index;not null" json:"machineId"`
	Position    int           `gorm:"not null" json:"position"`
	Description string        `gorm:"size:512;not null" json:"description"`
	Kind        ChecklistKind `gorm:"size:32;not null" json:"kind"`
}

// StoppageReason is a machine-specific reason a stoppage can be attributed to.
type StoppageReason struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	MachineID   int64  `gorm:"index;not null" json:"machineId"`
	Description string `gorm:"size:512;not null" json:"description"`
}
