package notification

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"maintenance-status-backend/internal/engine"
	"maintenance-status-backend/internal/model"
)

type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gormDB.AutoMigrate(&model.Machine{}, &model.PushSubscription{}))
	return gormDB
}

func subscribe(t *testing.T, db *gorm.DB, endpoint string, machineID int64) {
	t.Helper()

	machine := model.Machine{ID: machineID, Name: "Prensa 01"}
	require.NoError(t, db.Save(&machine).Error)

	sub := model.PushSubscription{
		Endpoint: endpoint,
		P256DH:   "test_p256dh",
		Auth:     "test_auth",
		Machines: []*model.Machine{&machine},
	}
	require.NoError(t, db.Create(&sub).Error)
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db := newTestDB(t, "notif_dispatch")
	wp := NewWorkerPool(1, db, &webpush.Options{})

	wp.Dispatch(Alert{MachineID: 123, Body: "ping"})

	select {
	case job := <-wp.Jobs():
		assert.Equal(t, int64(123), job.MachineID)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_Deliver(t *testing.T) {
	t.Run("sends the alert body to each subscriber", func(t *testing.T) {
		db := newTestDB(t, "notif_deliver")
		wp := NewWorkerPool(1, db, &webpush.Options{})
		subscribe(t, db, "https://example.com/push", 101)

		var wg sync.WaitGroup
		wg.Add(1)
		wp.SetSender(&mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Equal(t, "Máquina Prensa 01 está disponível novamente.", string(payload))
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wp.Start(ctx)

		wp.Dispatch(MachineAvailable(101, "Prensa 01"))
		wg.Wait()
	})

	t.Run("deletes expired subscriptions", func(t *testing.T) {
		db := newTestDB(t, "notif_expired")
		wp := NewWorkerPool(1, db, &webpush.Options{})
		subscribe(t, db, "https://example.com/expired", 102)

		wp.SetSender(&mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		})

		ctx := context.Background()
		wp.deliver(ctx, MachineAvailable(102, ""))

		var count int64
		require.NoError(t, db.Model(&model.PushSubscription{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestAlertBodies(t *testing.T) {
	t.Run("machine available falls back to the id", func(t *testing.T) {
		alert := MachineAvailable(7, "")
		assert.Equal(t, "Máquina 7 está disponível novamente.", alert.Body)
	})

	t.Run("preventive due mentions kind and date", func(t *testing.T) {
		alert := PreventiveDue(engine.PreventiveDueItem{
			MachineID:   3,
			MachineName: "Torno 02",
			Kind:        model.ChecklistCleaning,
			DueDate:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			Label:       "limpeza do filtro",
		})
		assert.Equal(t, "Máquina Torno 02: limpeza vence em 01/04/2026 (limpeza do filtro).", alert.Body)
	})
}
