package handlers

import (
	"database/sql"
	"time"

	"github.com/gabriel/content-resolver/internal/providers"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	db       *sql.DB
	registry *providers.Registry
}

func NewHealthHandler(db *sql.DB, registry *providers.Registry) *HealthHandler {
	return &HealthHandler{db: db, registry: registry}
}

// Check reports database reachability and how many providers are registered.
// It never calls upstream providers; /v1/providers/health does that.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	registered := len(h.registry.List())
	if err := h.db.Ping(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":    "degraded",
			"db":        "down",
			"providers": registered,
			"time":      time.Now().UTC().Format(time.RFC3339),
		})
	}

	status := "ok"
	if registered == 0 {
		status = "degraded"
	}
	return c.JSON(fiber.Map{
		"status":    status,
		"db":        "up",
		"providers": registered,
		"time":      time.Now().UTC().Format(time.RFC3339),
	})
}
