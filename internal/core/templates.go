package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campushq/beacon/internal/sqlite"
	"github.com/campushq/beacon/pkg/models"
)

// ErrTemplateExists is returned when creating a template whose name is
// already taken.
var ErrTemplateExists = errors.New("alert template already exists")

// CreateTemplate validates and stores a reusable alert template.
func CreateTemplate(ctx context.Context, db *sqlite.DB, log *slog.Logger, req models.CreateTemplateRequest) (*models.AlertTemplate, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: template name is required", ErrInvalidAlertPayload)
	}
	if req.TitleTemplate == "" || req.MessageTemplate == "" {
		return nil, fmt.Errorf("%w: title and message templates are required", ErrInvalidAlertPayload)
	}
	if !models.ValidAlertType(req.Type) {
		return nil, fmt.Errorf("%w: unknown alert type %q", ErrInvalidAlertPayload, req.Type)
	}
	if req.DefaultPriority == "" {
		req.DefaultPriority = models.AlertPriorityMedium
	}
	if !models.ValidAlertPriority(req.DefaultPriority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidAlertPayload, req.DefaultPriority)
	}
	if req.DefaultExpiryHours < 0 {
		return nil, fmt.Errorf("%w: default expiry hours must not be negative", ErrInvalidAlertPayload)
	}

	tmpl := &models.AlertTemplate{
		Name:               req.Name,
		Type:               req.Type,
		TitleTemplate:      req.TitleTemplate,
		MessageTemplate:    req.MessageTemplate,
		DefaultPriority:    req.DefaultPriority,
		DefaultExpiryHours: req.DefaultExpiryHours,
	}
	if err := db.CreateTemplate(ctx, tmpl); err != nil {
		if errors.Is(err, sqlite.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %q", ErrTemplateExists, req.Name)
		}
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	log.Info("alert template created", "template_id", tmpl.ID, "name", tmpl.Name)
	return tmpl, nil
}

// ListTemplates returns all stored alert templates.
func ListTemplates(ctx context.Context, db *sqlite.DB) ([]*models.AlertTemplate, error) {
	templates, err := db.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}
