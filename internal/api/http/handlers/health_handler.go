package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Pinger verifies a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	redis Pinger
}

// NewHealthHandler constructs handler.
func NewHealthHandler(redis Pinger) *HealthHandler {
	return &HealthHandler{redis: redis}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready. The cache being down does not fail readiness; the
// service degrades to direct store reads.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	cacheStatus := "ok"
	if h.redis != nil {
		if err := h.redis.Ping(c.Context()); err != nil {
			cacheStatus = "degraded"
		}
	}
	return c.JSON(fiber.Map{"status": "ok", "cache": cacheStatus})
}
