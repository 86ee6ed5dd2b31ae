package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"maintenance-status-backend/config"
	"maintenance-status-backend/internal/model"
	"maintenance-status-backend/internal/notification"
	"maintenance-status-backend/internal/store"
)

func newTestService(t *testing.T) (*Service, store.Store, *notification.WorkerPool) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open("file:reminder_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gormDB.AutoMigrate(
		&model.Machine{},
		&model.ChecklistItem{},
		&model.MaintenanceOrder{},
		&model.StatusHistoryEntry{},
	))

	s := store.NewGormStore(gormDB, 10)
	pool := notification.NewWorkerPool(8, gormDB, &webpush.Options{})
	cfg := &config.Config{}
	cfg.Reminder.Enabled = true
	cfg.Engine.NoticeWindowDays = 7

	return NewService(cfg, s, pool), s, pool
}

func TestRunOnce(t *testing.T) {
	svc, s, pool := newTestService(t)
	ctx := context.Background()

	next := time.Now().UTC().AddDate(0, 0, 2)
	machine := model.Machine{
		Name:             "Injetora 04",
		NextCleaningDate: &next,
		ChecklistItems: []model.ChecklistItem{
			{Position: 1, Description: "limpeza do filtro", Kind: model.ChecklistCleaning},
		},
	}
	require.NoError(t, s.DB().Create(&machine).Error)

	svc.RunOnce(ctx)

	select {
	case alert := <-pool.Jobs():
		assert.Equal(t, machine.ID, alert.MachineID)
		assert.Contains(t, alert.Body, "limpeza")
	case <-time.After(time.Second):
		t.Fatal("expected a due alert to be dispatched")
	}

	// A second pass over the same due date stays quiet.
	svc.RunOnce(ctx)
	select {
	case alert := <-pool.Jobs():
		t.Fatalf("unexpected duplicate alert: %+v", alert)
	default:
	}
}

func TestRunOnceSkipsMachinesOutsideWindow(t *testing.T) {
	svc, s, pool := newTestService(t)

	next := time.Now().UTC().AddDate(0, 0, 15)
	machine := model.Machine{
		Name:             "Serra 05",
		NextCleaningDate: &next,
		ChecklistItems: []model.ChecklistItem{
			{Position: 1, Description: "limpeza", Kind: model.ChecklistCleaning},
		},
	}
	require.NoError(t, s.DB().Create(&machine).Error)

	svc.RunOnce(context.Background())

	select {
	case alert := <-pool.Jobs():
		t.Fatalf("unexpected alert: %+v", alert)
	default:
	}
}
