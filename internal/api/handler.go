package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"maintenance-status-backend/config"
	"maintenance-status-backend/internal/engine"
	"maintenance-status-backend/internal/notification"
	"maintenance-status-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	cfg     *config.Config
	webpush *webpush.Options
	pool    *notification.WorkerPool
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, cfg *config.Config, webpushOptions *webpush.Options, pool *notification.WorkerPool) *Handler {
	return &Handler{
		store:   s,
		cfg:     cfg,
		webpush: webpushOptions,
		pool:    pool,
	}
}

// requestID returns the caller-supplied request id, or mints one. It seeds
// the idempotency key of transition timeline entries, so retries of the same
// request collapse into one entry.
func requestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// abortEngineError maps engine validation errors onto HTTP statuses. Anything
// the engine does not recognize is a persistence failure.
func abortEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidTransition):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrMissingComment),
		errors.Is(err, engine.ErrMissingResponsible),
		errors.Is(err, engine.ErrMissingInactivationReason):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrBudgetExceeded):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrStaleOrder):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
