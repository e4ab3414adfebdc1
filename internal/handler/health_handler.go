package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger reports whether the storage backing the ledger is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness checks. A ledger with no database is not
// alive in any useful sense, so the check pings storage.
type HealthHandler struct {
	pool Pinger
}

// NewHealthHandler creates a new HealthHandler over the given database pool.
func NewHealthHandler(pool Pinger) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Check handles GET /health. Returns 200 with {"status": "healthy"} while the
// database answers pings, 503 otherwise.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.pool.Ping(c.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "database connection failed",
		})
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}
