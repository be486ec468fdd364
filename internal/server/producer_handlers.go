package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/campushq/beacon/internal/core"
	"github.com/campushq/beacon/pkg/models"
)

// handleCreateEmergencyAlert broadcasts an emergency to every role.
// URL: POST /api/v1/alerts/emergency
func (s *Server) handleCreateEmergencyAlert(c *fiber.Ctx) error {
	var req models.EmergencyAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}

	alert, err := core.CreateEmergencyAlert(c.Context(), s.sqlite, s.log, req, currentUser(c).ID)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAlertPayload) {
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		}
		s.log.Error("failed to create emergency alert", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to create alert", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusCreated, alert)
}

// handleCreateFinancialAlert raises a financial alert for administrators.
// URL: POST /api/v1/alerts/financial
func (s *Server) handleCreateFinancialAlert(c *fiber.Ctx) error {
	var req models.FinancialAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}

	alert, err := core.CreateFinancialAlert(c.Context(), s.sqlite, s.log, req, currentUser(c).ID)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAlertPayload) {
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		}
		s.log.Error("failed to create financial alert", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to create alert", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusCreated, alert)
}

// handleCreateParentMeetingAlert asks a student's parent for an urgent
// meeting. Teacher-only.
// URL: POST /api/v1/alerts/parent-meeting
func (s *Server) handleCreateParentMeetingAlert(c *fiber.Ctx) error {
	var req models.ParentMeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}

	alert, err := core.CreateParentMeetingAlert(c.Context(), s.sqlite, s.log, req, currentUser(c).ID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrAlertNotFound):
			return SendErrorWithType(c, fiber.StatusNotFound, "Student not found", models.NotFoundErrorType)
		case errors.Is(err, core.ErrInvalidAlertPayload):
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		}
		s.log.Error("failed to create parent meeting alert", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to create alert", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusCreated, alert)
}

// handleCreateAcademicAlert raises an academic standing alert, guarded
// by the student's current data.
// URL: POST /api/v1/alerts/academic
func (s *Server) handleCreateAcademicAlert(c *fiber.Ctx) error {
	var req models.AcademicAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}

	alert, err := core.CreateAcademicAlert(c.Context(), s.sqlite, s.log, req, currentUser(c).ID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrAlertNotFound):
			return SendErrorWithType(c, fiber.StatusNotFound, "Student not found", models.NotFoundErrorType)
		case errors.Is(err, core.ErrGuardNotMet):
			return SendErrorWithType(c, fiber.StatusUnprocessableEntity, err.Error(), models.ValidationErrorType)
		case errors.Is(err, core.ErrInvalidAlertPayload):
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		}
		s.log.Error("failed to create academic alert", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to create alert", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusCreated, alert)
}
