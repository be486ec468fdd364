package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/campushq/beacon/internal/core"
	"github.com/campushq/beacon/internal/template"
	"github.com/campushq/beacon/pkg/models"
)

// TemplateResponse is a stored template annotated with the placeholder
// names callers must supply when rendering it.
type TemplateResponse struct {
	*models.AlertTemplate
	Variables []string `json:"variables"`
}

// handleListTemplates returns all stored alert templates with their
// placeholder variables, plus the names of the built-in scenarios backing
// the specialized endpoints.
// URL: GET /api/v1/templates
func (s *Server) handleListTemplates(c *fiber.Ctx) error {
	templates, err := core.ListTemplates(c.Context(), s.sqlite)
	if err != nil {
		s.log.Error("failed to list templates", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to list templates", models.GeneralErrorType)
	}

	out := make([]TemplateResponse, 0, len(templates))
	for _, tmpl := range templates {
		out = append(out, TemplateResponse{
			AlertTemplate: tmpl,
			Variables:     template.Variables(tmpl),
		})
	}
	return SendSuccess(c, fiber.StatusOK, fiber.Map{
		"templates": out,
		"scenarios": core.ScenarioNames(),
	})
}

// handleCreateTemplate stores a reusable alert template.
// URL: POST /api/v1/templates
func (s *Server) handleCreateTemplate(c *fiber.Ctx) error {
	var req models.CreateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}

	tmpl, err := core.CreateTemplate(c.Context(), s.sqlite, s.log, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrTemplateExists):
			return SendErrorWithType(c, fiber.StatusConflict, err.Error(), models.ConflictErrorType)
		case errors.Is(err, core.ErrInvalidAlertPayload):
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		}
		s.log.Error("failed to create template", "name", req.Name, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to create template", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusCreated, tmpl)
}
