package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks connectivity to a backing store
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness and readiness endpoints
type HealthHandler struct {
	BaseHandler
	db      Pinger
	appName string
	env     string
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, appName, env string) *HealthHandler {
	return &HealthHandler{db: db, appName: appName, env: env}
}

// Health handles GET /health. It reports liveness only.
func (h *HealthHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{
		"status":  "ok",
		"app":     h.appName,
		"env":     h.env,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": "1.0.0",
	})
}

// Ready handles GET /ready. It fails when the database is unreachable.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "database unreachable",
		})
		return
	}

	h.Success(c, gin.H{"status": "ready"})
}
