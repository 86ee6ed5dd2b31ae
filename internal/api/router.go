package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"maintenance-status-backend/config"
	"maintenance-status-backend/internal/mw"
	"maintenance-status-backend/internal/notification"
	"maintenance-status-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, cfg *config.Config, webpushOptions *webpush.Options, pool *notification.WorkerPool) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, cfg, webpushOptions, pool)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), 5)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/orders", handler.CreateOrder)
		api.GET("/orders/:order_id", handler.GetOrder)
		api.POST("/orders/:order_id/receive", handler.ReceiveOrder)
		api.POST("/orders/:order_id/transition", handler.TransitionOrder)
		api.PATCH("/orders/:order_id/category", handler.ReclassifyOrder)

		api.GET("/machines", handler.ListMachines)
		api.PUT("/machines/:machine_id/status", handler.SetMachineStatus)

		api.POST("/stoppages", handler.CreateStoppage)

		// Read-only derived views; safe to cache briefly.
		api.GET("/schedule/due", caching, handler.GetDueItems)
		api.GET("/reports/problem-score", caching, handler.GetProblemScores)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
