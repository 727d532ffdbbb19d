package obs

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandlers exposes liveness, readiness and the legacy /health probe.
type HealthHandlers struct {
	Ready func(ctx context.Context) error
	// ServicesReachable probes the booking service for /health.
	ServicesReachable func(ctx context.Context) bool
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	if h.Ready != nil {
		if err := h.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.Status(http.StatusOK)
}

// Health always answers 200; reachability of collaborators is reported, not enforced.
func (h HealthHandlers) Health(c *gin.Context) {
	reachable := false
	if h.ServicesReachable != nil {
		reachable = h.ServicesReachable(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"message":            "AI Concierge Agent is healthy",
		"services_reachable": reachable,
	})
}
