package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusProvider reports readiness and details for the health endpoints
type StatusProvider interface {
	Ready() bool
	GetStats() map[string]interface{}
}

type HealthHandler struct {
	logger    *zap.Logger
	status    StatusProvider
	startTime time.Time
}

func NewHealthHandler(logger *zap.Logger, status StatusProvider) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		status:    status,
		startTime: time.Now(),
	}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "alive",
		Uptime: time.Since(h.startTime).String(),
	})
}

func (h *HealthHandler) Readiness(c *gin.Context) {
	if !h.status.Ready() {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Uptime: time.Since(h.startTime).String(),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status: "ready",
		Uptime: time.Since(h.startTime).String(),
	})
}

func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	if !h.status.Ready() {
		status = "degraded"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details:   h.status.GetStats(),
	})
}
