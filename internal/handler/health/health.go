package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/listener"
	"github.com/openpeerlabs/escrow-backend/internal/utils/config"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

// StateReporter exposes the per-network listener states. The supervisor
// satisfies it.
type StateReporter interface {
	States() map[string]listener.State
}

type healthHandler struct {
	config    *config.AppConfig
	logger    *logger.Logger
	db        *gorm.DB
	listeners StateReporter
}

func New(config *config.AppConfig, logger *logger.Logger, db *gorm.DB, listeners StateReporter) IHandler {
	return &healthHandler{
		config:    config,
		logger:    logger,
		db:        db,
		listeners: listeners,
	}
}

// Basic handles the liveness probe at /healthz.
func (h *healthHandler) Basic(c *gin.Context) {
	c.JSON(http.StatusOK, BasicHealthResponse{Message: "ok"})
}

// Detailed reports database connectivity and per-network listener states.
// Any failed check degrades the overall status and the response code.
func (h *healthHandler) Detailed(c *gin.Context) {
	start := time.Now()
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: start,
		Checks:    make(map[string]HealthCheck),
	}

	ctx := context.Background()
	if c.Request != nil {
		ctx = c.Request.Context()
	}

	response.Checks["database"] = h.checkDatabase(ctx)
	response.Checks["listeners"] = h.checkListeners()

	status := http.StatusOK
	for _, check := range response.Checks {
		if check.Status != "healthy" {
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	response.DurationMs = time.Since(start).Milliseconds()
	c.JSON(status, response)
}

func (h *healthHandler) checkDatabase(ctx context.Context) HealthCheck {
	start := time.Now()

	sqlDB, err := h.db.DB()
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(pingCtx)
	}
	if err != nil {
		return HealthCheck{
			Status:  "unhealthy",
			Latency: time.Since(start).Milliseconds(),
			Error:   err.Error(),
		}
	}

	return HealthCheck{
		Status:  "healthy",
		Latency: time.Since(start).Milliseconds(),
	}
}

func (h *healthHandler) checkListeners() HealthCheck {
	if h.listeners == nil {
		return HealthCheck{Status: "healthy", Metadata: map[string]interface{}{"networks": 0}}
	}

	states := h.listeners.States()
	metadata := make(map[string]interface{}, len(states))
	status := "healthy"
	for network, state := range states {
		metadata[network] = string(state)
		if state == listener.StateFailed {
			status = "unhealthy"
		}
	}

	return HealthCheck{
		Status:   status,
		Metadata: metadata,
	}
}
