package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campushq/beacon/pkg/models"
)

const (
	insertTemplateQuery = `INSERT INTO alert_templates (
    name,
    alert_type,
    title_template,
    message_template,
    default_priority,
    default_expiry_hours
) VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, created_at, updated_at`

	selectTemplateBase = `SELECT
    id,
    name,
    alert_type,
    title_template,
    message_template,
    default_priority,
    default_expiry_hours,
    created_at,
    updated_at
FROM alert_templates`
)

// CreateTemplate stores a reusable alert template.
func (db *DB) CreateTemplate(ctx context.Context, tmpl *models.AlertTemplate) error {
	if tmpl == nil {
		return fmt.Errorf("template payload is required")
	}

	row := db.writeDB.QueryRowContext(ctx, insertTemplateQuery,
		tmpl.Name,
		string(tmpl.Type),
		tmpl.TitleTemplate,
		tmpl.MessageTemplate,
		string(tmpl.DefaultPriority),
		tmpl.DefaultExpiryHours,
	)

	var (
		id        int64
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &createdAt, &updatedAt); err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create template: %w", err)
	}

	tmpl.ID = models.TemplateID(id)
	tmpl.CreatedAt = createdAt
	tmpl.UpdatedAt = updatedAt
	return nil
}

// GetTemplateByName retrieves a template by its unique name.
func (db *DB) GetTemplateByName(ctx context.Context, name string) (*models.AlertTemplate, error) {
	row := db.readDB.QueryRowContext(ctx, selectTemplateBase+" WHERE name = ?", name)
	tmpl, err := scanTemplate(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tmpl, nil
}

// ListTemplates returns all stored templates ordered by name.
func (db *DB) ListTemplates(ctx context.Context) ([]*models.AlertTemplate, error) {
	rows, err := db.readDB.QueryContext(ctx, selectTemplateBase+" ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.AlertTemplate
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}
	return templates, nil
}

func scanTemplate(scanner interface{ Scan(dest ...any) error }) (*models.AlertTemplate, error) {
	var (
		id              int64
		name            string
		alertType       string
		titleTemplate   string
		messageTemplate string
		defaultPriority string
		defaultExpiry   int
		createdAt       time.Time
		updatedAt       time.Time
	)
	if err := scanner.Scan(&id, &name, &alertType, &titleTemplate, &messageTemplate,
		&defaultPriority, &defaultExpiry, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan template: %w", err)
	}
	return &models.AlertTemplate{
		ID:                 models.TemplateID(id),
		Name:               name,
		Type:               models.AlertType(alertType),
		TitleTemplate:      titleTemplate,
		MessageTemplate:    messageTemplate,
		DefaultPriority:    models.AlertPriority(defaultPriority),
		DefaultExpiryHours: defaultExpiry,
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}, nil
}
