package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"maintenance-status-backend/internal/engine"
	"maintenance-status-backend/internal/model"
)

// ErrStaleOrder is returned when a transition loses the race against a
// concurrent writer of the same order. Callers reload and retry.
var ErrStaleOrder = errors.New("order was modified concurrently")

// Store defines the interface for all database operations the engine's host
// needs: order lifecycle writes, stoppage accounting, and the read queries
// behind availability, scheduling and reporting.
type Store interface {
	DB() *gorm.DB

	CreateOrder(ctx context.Context, machineID int64, typ model.OrderType, category model.OrderCategory, description, requestID string) (model.MaintenanceOrder, error)
	GetOrderWithHistory(ctx context.Context, orderID int64) (model.MaintenanceOrder, error)
	ReceiveOrder(ctx context.Context, orderID int64, responsible, comment, requestID string) (model.MaintenanceOrder, error)
	TransitionOrder(ctx context.Context, orderID int64, target model.OrderStatus, comment, responsible, requestID string) (model.MaintenanceOrder, error)
	ReclassifyOrder(ctx context.Context, orderID int64, category model.OrderCategory) error

	OpenCorrectiveOrders(ctx context.Context, machineID int64) ([]model.MaintenanceOrder, error)
	OpenOrdersByMachine(ctx context.Context) (map[int64][]model.MaintenanceOrder, error)
	LastClosedPreventive(ctx context.Context) (map[int64]time.Time, error)

	RecordStoppage(ctx context.Context, req StoppageRequest) (model.Stoppage, error)

	Machines(ctx context.Context) ([]model.Machine, error)
	SetMachineStatus(ctx context.Context, machineID int64, status model.ManualStatus, reason string) (model.Machine, error)
	ReportData(ctx context.Context) ([]model.Machine, []model.MaintenanceOrder, []model.Stoppage, error)
}

// StoppageRequest is the input for recording a stoppage. Exactly one of End
// or DurationHours must be supplied; either way the stored duration is the
// work-hours-clipped derivation.
type StoppageRequest struct {
	MachineID        int64
	OrderID          *int64
	ReasonID         int64
	Date             time.Time
	Start            engine.TimeOfDay
	End              *engine.TimeOfDay
	DurationHours    *float64
	RegistrationType model.RegistrationType
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB

	// defaultDailyHours seeds a machine's daily budget when the machine has
	// no configured value.
	defaultDailyHours float64
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, defaultDailyHours float64) Store {
	if defaultDailyHours <= 0 {
		defaultDailyHours = 10
	}
	return &gormStore{db: db, defaultDailyHours: defaultDailyHours}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// CreateOrder persists a freshly submitted order together with the first
// entry of its timeline.
func (s *gormStore) CreateOrder(ctx context.Context, machineID int64, typ model.OrderType, category model.OrderCategory, description, requestID string) (model.MaintenanceOrder, error) {
	var created model.MaintenanceOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var machine model.Machine
		if err := tx.First(&machine, machineID).Error; err != nil {
			return fmt.Errorf("machine %d: %w", machineID, err)
		}

		order, entry := engine.Open(machineID, typ, category, description, time.Now().UTC(), requestID)
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		entry.OrderID = order.ID
		if err := insertHistory(tx, &entry); err != nil {
			return err
		}
		created = order
		return nil
	})
	return created, err
}

// GetOrderWithHistory loads an order with its timeline in append order.
func (s *gormStore) GetOrderWithHistory(ctx context.Context, orderID int64) (model.MaintenanceOrder, error) {
	var order model.MaintenanceOrder
	err := s.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at, id")
		}).
		First(&order, orderID).Error
	return order, err
}

// ReceiveOrder runs the receive transition and persists the result.
func (s *gormStore) ReceiveOrder(ctx context.Context, orderID int64, responsible, comment, requestID string) (model.MaintenanceOrder, error) {
	return s.applyTransition(ctx, orderID, func(order model.MaintenanceOrder) (model.MaintenanceOrder, model.StatusHistoryEntry, error) {
		return engine.Receive(order, responsible, comment, time.Now().UTC(), requestID)
	})
}

// TransitionOrder runs a generic status transition and persists the result.
func (s *gormStore) TransitionOrder(ctx context.Context, orderID int64, target model.OrderStatus, comment, responsible, requestID string) (model.MaintenanceOrder, error) {
	return s.applyTransition(ctx, orderID, func(order model.MaintenanceOrder) (model.MaintenanceOrder, model.StatusHistoryEntry, error) {
		return engine.Transition(order, target, comment, responsible, time.Now().UTC(), requestID)
	})
}

// applyTransition loads the order, lets the engine decide, and writes the
// outcome with a compare-and-set on the previous status so concurrent
// transition attempts on the same order cannot both land. The history insert
// is keyed on the idempotency key: a duplicate write of the same transition
// leaves exactly one timeline entry.
func (s *gormStore) applyTransition(ctx context.Context, orderID int64, apply func(model.MaintenanceOrder) (model.MaintenanceOrder, model.StatusHistoryEntry, error)) (model.MaintenanceOrder, error) {
	var updated model.MaintenanceOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.MaintenanceOrder
		if err := tx.First(&order, orderID).Error; err != nil {
			return fmt.Errorf("order %d: %w", orderID, err)
		}

		next, entry, err := apply(order)
		if err != nil {
			return err
		}

		res := tx.Model(&model.MaintenanceOrder{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(map[string]any{
				"status":      next.Status,
				"responsible": next.Responsible,
				"received_at": next.ReceivedAt,
				"closed_at":   next.ClosedAt,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update order %d: %w", order.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %d: %w", order.ID, ErrStaleOrder)
		}

		entry.OrderID = order.ID
		if err := insertHistory(tx, &entry); err != nil {
			return err
		}
		updated = next
		return nil
	})
	return updated, err
}

// insertHistory appends a timeline entry, collapsing duplicate writes of the
// same transition into a single row.
func insertHistory(tx *gorm.DB, entry *model.StatusHistoryEntry) error {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idempotency_key"}},
		DoNothing: true,
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("failed to append history for order %d: %w", entry.OrderID, err)
	}
	return nil
}

// ReclassifyOrder changes an order's category. The category is independent of
// the state machine, so no timeline entry is appended.
func (s *gormStore) ReclassifyOrder(ctx context.Context, orderID int64, category model.OrderCategory) error {
	res := s.db.WithContext(ctx).Model(&model.MaintenanceOrder{}).
		Where("id = ?", orderID).
		Update("category", category)
	if res.Error != nil {
		return fmt.Errorf("failed to reclassify order %d: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %d: %w", orderID, gorm.ErrRecordNotFound)
	}
	return nil
}

// OpenCorrectiveOrders returns the corrective orders still demanding work on
// a machine.
func (s *gormStore) OpenCorrectiveOrders(ctx context.Context, machineID int64) ([]model.MaintenanceOrder, error) {
	var orders []model.MaintenanceOrder
	err := s.db.WithContext(ctx).
		Where("machine_id = ? AND type = ? AND status NOT IN ?",
			machineID, model.OrderCorrective, []model.OrderStatus{model.StatusDone, model.StatusCancelled}).
		Find(&orders).Error
	return orders, err
}

// OpenOrdersByMachine returns every open order grouped by machine, for list
// views that derive availability for many machines at once.
func (s *gormStore) OpenOrdersByMachine(ctx context.Context) (map[int64][]model.MaintenanceOrder, error) {
	var orders []model.MaintenanceOrder
	err := s.db.WithContext(ctx).
		Where("status NOT IN ?", []model.OrderStatus{model.StatusDone, model.StatusCancelled}).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	grouped := make(map[int64][]model.MaintenanceOrder)
	for _, o := range orders {
		grouped[o.MachineID] = append(grouped[o.MachineID], o)
	}
	return grouped, nil
}

// LastClosedPreventive returns, per machine, the closed_at of its most
// recently completed preventive order.
func (s *gormStore) LastClosedPreventive(ctx context.Context) (map[int64]time.Time, error) {
	var orders []model.MaintenanceOrder
	err := s.db.WithContext(ctx).
		Where("type = ? AND status = ? AND closed_at IS NOT NULL", model.OrderPreventive, model.StatusDone).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	latest := make(map[int64]time.Time)
	for _, o := range orders {
		if o.ClosedAt == nil {
			continue
		}
		if current, ok := latest[o.MachineID]; !ok || o.ClosedAt.After(current) {
			latest[o.MachineID] = *o.ClosedAt
		}
	}
	return latest, nil
}

// RecordStoppage derives the stoppage's billable duration, checks it against
// the machine's daily budget and persists both atomically. The budget row is
// lazily created on the machine's first stoppage of the day; the decrement is
// an in-database expression guarded by the remaining amount, so two stoppages
// for the same machine and day cannot overdraw it.
func (s *gormStore) RecordStoppage(ctx context.Context, req StoppageRequest) (model.Stoppage, error) {
	end, err := resolveEnd(req)
	if err != nil {
		return model.Stoppage{}, err
	}
	duration := engine.ClipToWorkHours(req.Start, end)
	date := engine.DateOnly(req.Date)

	registration := req.RegistrationType
	if registration == "" {
		registration = model.RegistrationManual
	}

	var stoppage model.Stoppage
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var machine model.Machine
		if err := tx.First(&machine, req.MachineID).Error; err != nil {
			return fmt.Errorf("machine %d: %w", req.MachineID, err)
		}

		budget, err := s.ensureBudget(tx, machine, date)
		if err != nil {
			return err
		}

		if _, err := engine.Deduct(budget.RemainingHours, duration); err != nil {
			return err
		}

		res := tx.Model(&model.DailyAvailableBudget{}).
			Where("machine_id = ? AND date = ? AND remaining_hours >= ?", machine.ID, date, duration).
			Update("remaining_hours", gorm.Expr("round(CAST(remaining_hours - ? AS numeric), 2)", duration))
		if res.Error != nil {
			return fmt.Errorf("failed to decrement budget for machine %d: %w", machine.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			// A concurrent stoppage drained the budget between the read
			// and the guarded update.
			return fmt.Errorf("machine %d on %s: %w", machine.ID, date.Format("2006-01-02"), engine.ErrBudgetExceeded)
		}

		stoppage = model.Stoppage{
			MachineID:        req.MachineID,
			OrderID:          req.OrderID,
			ReasonID:         req.ReasonID,
			Date:             date,
			StartMinute:      int(req.Start),
			EndMinute:        int(end),
			DurationHours:    duration,
			RegistrationType: registration,
		}
		if err := tx.Create(&stoppage).Error; err != nil {
			return fmt.Errorf("failed to create stoppage: %w", err)
		}
		return nil
	})
	return stoppage, txErr
}

func resolveEnd(req StoppageRequest) (engine.TimeOfDay, error) {
	switch {
	case req.End != nil:
		return *req.End, nil
	case req.DurationHours != nil:
		return engine.EndFromDuration(req.Start, *req.DurationHours), nil
	default:
		return 0, errors.New("either an end time or a duration is required")
	}
}

// ensureBudget lazily creates the day's budget row, seeded with the machine's
// configured daily hours. Racing creators collapse on the primary key.
func (s *gormStore) ensureBudget(tx *gorm.DB, machine model.Machine, date time.Time) (model.DailyAvailableBudget, error) {
	var budget model.DailyAvailableBudget
	err := tx.Where("machine_id = ? AND date = ?", machine.ID, date).First(&budget).Error
	if err == nil {
		return budget, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return budget, fmt.Errorf("failed to load budget for machine %d: %w", machine.ID, err)
	}

	hours := machine.DailyAvailableHours
	if hours <= 0 {
		hours = s.defaultDailyHours
	}
	seed := model.DailyAvailableBudget{MachineID: machine.ID, Date: date, RemainingHours: hours}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return budget, fmt.Errorf("failed to create budget for machine %d: %w", machine.ID, err)
	}

	if err := tx.Where("machine_id = ? AND date = ?", machine.ID, date).First(&budget).Error; err != nil {
		return budget, fmt.Errorf("failed to reload budget for machine %d: %w", machine.ID, err)
	}
	return budget, nil
}

// Machines returns the catalog with checklist items in configured order.
func (s *gormStore) Machines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	err := s.db.WithContext(ctx).
		Preload("ChecklistItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Find(&machines).Error
	return machines, err
}

// SetMachineStatus applies an operator status change, holding the
// reason-iff-inactive invariant.
func (s *gormStore) SetMachineStatus(ctx context.Context, machineID int64, status model.ManualStatus, reason string) (model.Machine, error) {
	var updated model.Machine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var machine model.Machine
		if err := tx.First(&machine, machineID).Error; err != nil {
			return fmt.Errorf("machine %d: %w", machineID, err)
		}

		next, err := engine.SetManualStatus(machine, status, reason)
		if err != nil {
			return err
		}

		if err := tx.Model(&model.Machine{}).Where("id = ?", machine.ID).
			Updates(map[string]any{
				"manual_status":       next.ManualStatus,
				"inactivation_reason": next.InactivationReason,
			}).Error; err != nil {
			return fmt.Errorf("failed to update machine %d: %w", machine.ID, err)
		}
		updated = next
		return nil
	})
	return updated, err
}

// ReportData loads the full snapshot the problem score report runs over.
func (s *gormStore) ReportData(ctx context.Context) ([]model.Machine, []model.MaintenanceOrder, []model.Stoppage, error) {
	var machines []model.Machine
	if err := s.db.WithContext(ctx).Find(&machines).Error; err != nil {
		return nil, nil, nil, err
	}
	var orders []model.MaintenanceOrder
	if err := s.db.WithContext(ctx).Find(&orders).Error; err != nil {
		return nil, nil, nil, err
	}
	var stoppages []model.Stoppage
	if err := s.db.WithContext(ctx).Find(&stoppages).Error; err != nil {
		return nil, nil, nil, err
	}
	return machines, orders, stoppages, nil
}
