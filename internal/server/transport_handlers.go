package server

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/campushq/beacon/internal/core"
	"github.com/campushq/beacon/pkg/models"
)

// TransportEventResponse pairs the logged event with the alert it fanned
// out, if any.
type TransportEventResponse struct {
	Event *models.TransportEvent `json:"event"`
	Alert *models.Alert          `json:"alert,omitempty"`
}

// handleRecordTransportEvent logs a bus event and fans out the matching
// transport alert.
// URL: POST /api/v1/transport/events
func (s *Server) handleRecordTransportEvent(c *fiber.Ctx) error {
	var req models.RecordTransportEventRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}

	event, alert, err := core.RecordTransportEvent(c.Context(), s.sqlite, s.log, req, currentUser(c).ID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrAlertNotFound):
			return SendErrorWithType(c, fiber.StatusNotFound, "Student not found", models.NotFoundErrorType)
		case errors.Is(err, core.ErrInvalidAlertPayload):
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		}
		s.log.Error("failed to record transport event", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to record event", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusCreated, TransportEventResponse{Event: event, Alert: alert})
}

// handleListTransportEvents returns the bus event log for a student.
// URL: GET /api/v1/students/:studentID/transport-events
func (s *Server) handleListTransportEvents(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("studentID"), 10, 64)
	if err != nil || id <= 0 {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid student ID", models.ValidationErrorType)
	}

	events, err := core.ListTransportEvents(c.Context(), s.sqlite, models.StudentID(id))
	if err != nil {
		s.log.Error("failed to list transport events", "student_id", id, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to list events", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, events)
}
