package server

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/campushq/beacon/internal/core"
	"github.com/campushq/beacon/internal/sqlite"
	"github.com/campushq/beacon/pkg/models"
)

// parseAlertID extracts and validates the :alertID route parameter.
func (s *Server) parseAlertID(c *fiber.Ctx) (models.AlertID, error) {
	id, err := strconv.ParseInt(c.Params("alertID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, SendErrorWithType(c, fiber.StatusBadRequest, "Invalid alert ID", models.ValidationErrorType)
	}
	return models.AlertID(id), nil
}

// handleListMyAlerts returns the active, unexpired alerts visible to the
// authenticated user, priority-sorted and decorated with acknowledgement
// state.
// URL: GET /api/v1/alerts/mine
func (s *Server) handleListMyAlerts(c *fiber.Ctx) error {
	user := currentUser(c)

	list, err := core.ListAlertsForUser(c.Context(), s.sqlite, s.log, user.ID)
	if err != nil {
		s.log.Error("failed to list alerts", "user_id", user.ID, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to list alerts", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, list)
}

// handleCreateAlert creates an alert with raw content.
// URL: POST /api/v1/alerts
func (s *Server) handleCreateAlert(c *fiber.Ctx) error {
	var req models.CreateAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}

	alert, err := core.CreateAlert(c.Context(), s.sqlite, s.log, req, currentUser(c).ID)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAlertPayload) {
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		}
		s.log.Error("failed to create alert", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to create alert", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusCreated, alert)
}

// handleCreateAlertFromTemplate creates an alert by rendering a stored
// template.
// URL: POST /api/v1/alerts/from-template
func (s *Server) handleCreateAlertFromTemplate(c *fiber.Ctx) error {
	var req models.CreateFromTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}

	alert, err := core.CreateAlertFromTemplate(c.Context(), s.sqlite, s.log, req, currentUser(c).ID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrTemplateNotFound):
			return SendErrorWithType(c, fiber.StatusNotFound, err.Error(), models.NotFoundErrorType)
		case errors.Is(err, core.ErrInvalidAlertPayload):
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		}
		s.log.Error("failed to create alert from template", "template", req.Template, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to create alert", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusCreated, alert)
}

// handleGetAlert returns one alert with computed state, enforcing
// visibility.
// URL: GET /api/v1/alerts/:alertID
func (s *Server) handleGetAlert(c *fiber.Ctx) error {
	alertID, err := s.parseAlertID(c)
	if err != nil {
		return err
	}

	alert, err := core.GetAlertForUser(c.Context(), s.sqlite, s.log, alertID, currentUser(c).ID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrAlertNotFound):
			return SendErrorWithType(c, fiber.StatusNotFound, "Alert not found", models.NotFoundErrorType)
		case errors.Is(err, core.ErrAlertNotVisible):
			return SendErrorWithType(c, fiber.StatusForbidden, "Alert is not visible to you", models.ForbiddenErrorType)
		}
		s.log.Error("failed to get alert", "alert_id", alertID, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to retrieve alert", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, alert)
}

// handleListAlertRecipients returns the fully resolved recipient set of
// an alert.
// URL: GET /api/v1/alerts/:alertID/recipients
func (s *Server) handleListAlertRecipients(c *fiber.Ctx) error {
	alertID, err := s.parseAlertID(c)
	if err != nil {
		return err
	}

	alert, err := s.sqlite.GetAlert(c.Context(), alertID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return SendErrorWithType(c, fiber.StatusNotFound, "Alert not found", models.NotFoundErrorType)
		}
		s.log.Error("failed to get alert", "alert_id", alertID, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to retrieve alert", models.GeneralErrorType)
	}

	recipients, err := core.ResolveRecipients(c.Context(), s.sqlite, alert)
	if err != nil {
		s.log.Error("failed to resolve recipients", "alert_id", alertID, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to resolve recipients", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"recipients": recipients, "count": len(recipients)})
}

// handleAcknowledgeAlert records a per-user receipt for an alert.
// URL: POST /api/v1/alerts/:alertID/acknowledge
func (s *Server) handleAcknowledgeAlert(c *fiber.Ctx) error {
	alertID, err := s.parseAlertID(c)
	if err != nil {
		return err
	}

	var req models.AcknowledgeAlertRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
		}
	}

	ack, err := core.AcknowledgeAlert(c.Context(), s.sqlite, s.log, alertID, currentUser(c).ID, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrAlertNotFound):
			return SendErrorWithType(c, fiber.StatusNotFound, "Alert not found", models.NotFoundErrorType)
		case errors.Is(err, core.ErrAlertNotVisible):
			return SendErrorWithType(c, fiber.StatusForbidden, "Alert is not visible to you", models.ForbiddenErrorType)
		case errors.Is(err, core.ErrAlreadyAcknowledged):
			return SendErrorWithType(c, fiber.StatusConflict, "Alert already acknowledged", models.ConflictErrorType)
		}
		s.log.Error("failed to acknowledge alert", "alert_id", alertID, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to acknowledge alert", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusCreated, ack)
}

// handleResolveAlert moves an alert to the resolved status.
// URL: POST /api/v1/alerts/:alertID/resolve
func (s *Server) handleResolveAlert(c *fiber.Ctx) error {
	alertID, err := s.parseAlertID(c)
	if err != nil {
		return err
	}

	if err := core.ResolveAlert(c.Context(), s.sqlite, s.log, alertID); err != nil {
		if errors.Is(err, core.ErrAlertNotFound) {
			return SendErrorWithType(c, fiber.StatusNotFound, "Alert not found", models.NotFoundErrorType)
		}
		s.log.Error("failed to resolve alert", "alert_id", alertID, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to resolve alert", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"message": "Alert resolved"})
}

// handleExpireDueAlerts runs the expiry sweep on demand.
// URL: POST /api/v1/alerts/expire-due
func (s *Server) handleExpireDueAlerts(c *fiber.Ctx) error {
	count, err := core.ExpireDueAlerts(c.Context(), s.sqlite, s.log)
	if err != nil {
		s.log.Error("failed to expire alerts", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to expire alerts", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"expired": count})
}
