// Package handlers contains HTTP route handler functions for the task status API.
// This file handles the /api/statuses routes: listing and creating task statuses.
//
// Each exported function follows the "handler factory" pattern: it takes the
// StatusStore and returns a fiber.Handler. That lets us inject storage without
// global variables, and lets tests pass a fake store.
package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/task-status/internal/database"
)

// Error messages returned to clients.
const (
	msgConnectionFailed = "Database connection failed"
	msgFieldsRequired   = "Task ID and status_name are required"
	msgInvalidBody      = "invalid request body"
)

// StatusResponse is one element of the GET /api/statuses array.
// Timestamps are ISO 8601 strings, or null when the column is NULL.
type StatusResponse struct {
	ID        int64   `json:"id"`
	TaskID    int64   `json:"task_id"`
	Status    string  `json:"status"`
	CreatedAt *string `json:"created_at"`
	UpdatedAt *string `json:"updated_at"`
}

// CreateStatusRequest is the JSON body we expect on POST /api/statuses.
// Both fields are pointers so we can tell "missing" apart from a zero value:
// {"task_id": 0, "status_name": ""} is present, {} is not.
type CreateStatusRequest struct {
	TaskID     *int64  `json:"task_id"`
	StatusName *string `json:"status_name"`
}

// CreateStatusResponse is what POST /api/statuses sends back.
// Note the field is status_name here, echoing the request, while the list endpoint
// exposes the stored column as status.
type CreateStatusResponse struct {
	ID         int64  `json:"id"`
	TaskID     int64  `json:"task_id"`
	StatusName string `json:"status_name"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// ListStatuses returns a handler for GET /api/statuses.
// It returns every stored status; there is no filtering or pagination.
func ListStatuses(store database.StatusStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		statuses, err := store.ListStatuses(c.UserContext())
		if err != nil {
			return storageError(c, err)
		}

		// make(..., 0, n) so an empty table encodes as [] rather than null
		response := make([]StatusResponse, 0, len(statuses))
		for _, s := range statuses {
			response = append(response, StatusResponse{
				ID:        s.ID,
				TaskID:    s.TaskID,
				Status:    s.Status,
				CreatedAt: database.FormatTimestamp(s.CreatedAt),
				UpdatedAt: database.FormatTimestamp(s.UpdatedAt),
			})
		}

		return c.JSON(response)
	}
}

// CreateStatus returns a handler for POST /api/statuses.
// Validation happens before storage is touched, so a 400 never opens a connection.
func CreateStatus(store database.StatusStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": msgFieldsRequired,
			})
		}

		var req CreateStatusRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": msgInvalidBody,
			})
		}

		if req.TaskID == nil || req.StatusName == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": msgFieldsRequired,
			})
		}

		created, err := store.CreateStatus(c.UserContext(), *req.TaskID, *req.StatusName)
		if err != nil {
			return storageError(c, err)
		}

		// The timestamps are the application's clock at response time; the row is not
		// re-read, so they can differ slightly from what the database stored.
		now := time.Now().UTC().Format(time.RFC3339)

		return c.Status(fiber.StatusCreated).JSON(CreateStatusResponse{
			ID:         created.ID,
			TaskID:     *req.TaskID,
			StatusName: *req.StatusName,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
}

// storageError maps a StatusStore error to a 500 response. An unreachable database
// gets a fixed message; anything else echoes the error text.
func storageError(c *fiber.Ctx, err error) error {
	msg := err.Error()
	if errors.Is(err, database.ErrConnectionFailed) {
		msg = msgConnectionFailed
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": msg,
	})
}
