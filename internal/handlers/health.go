// Package handlers contains the HTTP route handler functions for the task status API.
// Each handler corresponds to one API endpoint and is responsible for reading the
// request, calling the storage layer, and writing a JSON response.
package handlers

import "github.com/gofiber/fiber/v2"

// HealthCheck handles GET /api/health.
// It is a liveness probe: no database access, no authentication, and no failure path.
// It answers {"status":"UP"} even when the database is down, which is what the
// other services behind the same frontend report as well.
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "UP"})
}
