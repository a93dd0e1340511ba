// Package router assembles the Fiber application: global middleware, the JSON
// error handler and the /api routes. main() and the HTTP tests both build the app
// through New, so tests exercise exactly what production serves.
package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	// cors lets the browser frontend call this service from another origin.
	"github.com/gofiber/fiber/v2/middleware/cors"
	// recover turns a panic in a handler into an error for the ErrorHandler below.
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/trentd187/task-status/internal/config"
	"github.com/trentd187/task-status/internal/database"
	"github.com/trentd187/task-status/internal/handlers"
	"github.com/trentd187/task-status/internal/middleware"
)

// New builds the HTTP application on top of store.
func New(cfg *config.Config, store database.StatusStore, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Task Status API",
		DisableStartupMessage: !cfg.Debug,
		ErrorHandler:          errorHandler,
	})

	// --- Global middleware ---
	// Order matters: recover sits inside the access log, so a panicking handler
	// is turned into an error first and then logged with its final 500 status.
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog(log))
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.Debug}))
	app.Use(cors.New())

	api := app.Group("/api")

	// GET  /api/health     liveness probe, never touches the database
	// GET  /api/statuses   list every status
	// POST /api/statuses   create a status for a task
	api.Get("/health", handlers.HealthCheck)
	api.Get("/statuses", handlers.ListStatuses(store))
	api.Post("/statuses", handlers.CreateStatus(store))

	return app
}

// errorHandler renders any error that reaches Fiber as {"error": "..."}.
// *fiber.Error values (404 for unknown routes, 405, ...) keep their code; anything
// else, including recovered panics, becomes a 500 carrying the error text.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
