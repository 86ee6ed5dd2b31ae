package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"maintenance-status-backend/config"
	"maintenance-status-backend/internal/engine"
	"maintenance-status-backend/internal/notification"
	"maintenance-status-backend/internal/store"
)

// Service periodically recomputes the preventive due list and pushes an alert
// for each machine/kind pair entering the notice window. A pair is alerted
// once per due date; a rescheduled date fires again.
type Service struct {
	cfg   *config.Config
	store store.Store
	pool  *notification.WorkerPool

	mu      sync.Mutex
	alerted map[string]time.Time
}

// NewService creates and initializes a new reminder service.
func NewService(cfg *config.Config, s store.Store, pool *notification.WorkerPool) *Service {
	return &Service{
		cfg:     cfg,
		store:   s,
		pool:    pool,
		alerted: make(map[string]time.Time),
	}
}

// Run executes reminder passes until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Reminder.Enabled {
		log.Println("Reminder is disabled. Not starting.")
		return
	}
	log.Println("Starting reminder service...")

	s.RunOnce(ctx)

	interval := time.Duration(s.cfg.Reminder.IntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reminder service shutting down.")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single reminder pass.
func (s *Service) RunOnce(ctx context.Context) {
	machines, err := s.store.Machines(ctx)
	if err != nil {
		log.Printf("Reminder: failed to load machines: %v", err)
		return
	}
	lastPreventive, err := s.store.LastClosedPreventive(ctx)
	if err != nil {
		log.Printf("Reminder: failed to load preventive history: %v", err)
		return
	}

	due := engine.DueItems(machines, lastPreventive, time.Now().UTC(), s.cfg.Engine.NoticeWindowDays, s.cfg.Engine.MaintenancePeriodDays)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range due {
		key := fmt.Sprintf("%d/%s", item.MachineID, item.Kind)
		if previous, ok := s.alerted[key]; ok && previous.Equal(item.DueDate) {
			continue
		}
		s.alerted[key] = item.DueDate
		s.pool.Dispatch(notification.PreventiveDue(item))
	}
}
