package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const HealthzTimeout = 5 * time.Second

// HealthCheck reports whether the storage backend is reachable
type HealthCheck func(ctx context.Context) error

// Healthz returns a handler reporting the health of the server and its
// storage backend.
func Healthz(backend string, check HealthCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), HealthzTimeout)
		defer cancel()

		if check != nil {
			if err := check(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status":  "down",
					"backend": backend,
					"error":   err.Error(),
				})
			}
		}

		return c.JSON(fiber.Map{
			"status":  "ok",
			"backend": backend,
		})
	}
}
