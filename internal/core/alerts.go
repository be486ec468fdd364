// Package core contains the alert engine: creation, template rendering,
// targeting resolution, visibility, acknowledgement and lifecycle
// transitions. Functions here are stateless; persistence goes through
// the sqlite package.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/campushq/beacon/internal/sqlite"
	"github.com/campushq/beacon/internal/template"
	"github.com/campushq/beacon/pkg/models"
)

var (
	// ErrAlertNotFound is returned when the requested alert does not exist.
	ErrAlertNotFound = errors.New("alert not found")
	// ErrAlertNotVisible is returned when a user acts on an alert that does
	// not target them.
	ErrAlertNotVisible = errors.New("alert is not visible to this user")
	// ErrAlreadyAcknowledged is returned on a repeat acknowledgement of the
	// same alert by the same user.
	ErrAlreadyAcknowledged = errors.New("alert already acknowledged")
	// ErrInvalidAlertPayload is returned when a creation request fails
	// validation. The wrapped message names the offending field.
	ErrInvalidAlertPayload = errors.New("invalid alert payload")
	// ErrTemplateNotFound is returned when a named template does not exist.
	ErrTemplateNotFound = errors.New("alert template not found")
)

var acksCounter = metrics.NewCounter("beacon_alert_acknowledgements_total")

// CreateAlert validates the request and persists a new active alert.
// Alerts with no targeting mechanism at all are rejected: they would be
// unreachable by every recipient query.
func CreateAlert(ctx context.Context, db *sqlite.DB, log *slog.Logger, req models.CreateAlertRequest, createdBy models.UserID) (*models.Alert, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidAlertPayload)
	}
	if req.Message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidAlertPayload)
	}
	if !models.ValidAlertType(req.Type) {
		return nil, fmt.Errorf("%w: unknown alert type %q", ErrInvalidAlertPayload, req.Type)
	}
	if req.Priority == "" {
		req.Priority = models.AlertPriorityMedium
	}
	if !models.ValidAlertPriority(req.Priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidAlertPayload, req.Priority)
	}
	for _, role := range req.TargetRoles {
		if !models.ValidUserRole(role) {
			return nil, fmt.Errorf("%w: unknown target role %q", ErrInvalidAlertPayload, role)
		}
	}

	alert := &models.Alert{
		Title:          req.Title,
		Message:        req.Message,
		Type:           req.Type,
		Priority:       req.Priority,
		Status:         models.AlertStatusActive,
		TargetUserIDs:  req.TargetUserIDs,
		TargetRoles:    req.TargetRoles,
		StudentID:      req.StudentID,
		CreatedBy:      createdBy,
		ExpiresAt:      req.ExpiresAt,
		ActionRequired: req.ActionRequired,
		ActionURL:      req.ActionURL,
		ActionText:     req.ActionText,
	}
	if !alert.HasTargeting() {
		return nil, fmt.Errorf("%w: alert has no target users, roles or student", ErrInvalidAlertPayload)
	}

	if err := db.CreateAlert(ctx, alert); err != nil {
		log.Error("failed to create alert", "error", err, "type", alert.Type)
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	metrics.GetOrCreateCounter(fmt.Sprintf(
		`beacon_alerts_created_total{type=%q,priority=%q}`, alert.Type, alert.Priority)).Inc()
	log.Info("alert created",
		"alert_id", alert.ID, "type", alert.Type, "priority", alert.Priority, "created_by", createdBy)
	return alert, nil
}

// CreateAlertFromTemplate renders a stored template with the given
// context and creates an alert from the result. Zero-valued priority and
// expiry overrides fall back to the template defaults; a default expiry
// of zero hours means the alert never expires.
func CreateAlertFromTemplate(ctx context.Context, db *sqlite.DB, log *slog.Logger, req models.CreateFromTemplateRequest, createdBy models.UserID) (*models.Alert, error) {
	tmpl, err := db.GetTemplateByName(ctx, req.Template)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, req.Template)
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	title, message, err := template.Render(tmpl, req.Context)
	if err != nil {
		// Keep the RenderError in the chain so callers can tell a missing
		// variable apart from other payload problems.
		return nil, fmt.Errorf("%w: %w", ErrInvalidAlertPayload, err)
	}

	priority := req.Priority
	if priority == "" {
		priority = tmpl.DefaultPriority
	}
	expiryHours := req.ExpiryHours
	if expiryHours == 0 {
		expiryHours = tmpl.DefaultExpiryHours
	}
	var expiresAt *time.Time
	if expiryHours > 0 {
		t := time.Now().UTC().Add(time.Duration(expiryHours) * time.Hour)
		expiresAt = &t
	}

	return CreateAlert(ctx, db, log, models.CreateAlertRequest{
		Title:          title,
		Message:        message,
		Type:           tmpl.Type,
		Priority:       priority,
		TargetUserIDs:  req.TargetUserIDs,
		TargetRoles:    req.TargetRoles,
		StudentID:      req.StudentID,
		ExpiresAt:      expiresAt,
		ActionRequired: req.ActionRequired,
		ActionURL:      req.ActionURL,
		ActionText:     req.ActionText,
	}, createdBy)
}

// ListAlertsForUser returns every active, unexpired alert visible to the
// user, sorted by priority rank (emergency first) and created_at
// descending within a rank, with per-alert acknowledgement state and the
// unacknowledged count.
func ListAlertsForUser(ctx context.Context, db *sqlite.DB, log *slog.Logger, userID models.UserID) (*models.AlertList, error) {
	role, err := db.UserRole(ctx, userID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to resolve user role: %w", err)
	}

	alerts, err := db.ListActiveAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	acked, err := db.AcknowledgedAlertIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list acknowledgements: %w", err)
	}

	now := time.Now().UTC()
	var visible []*models.AlertWithState
	unacknowledged := 0
	for _, alert := range alerts {
		// Expiry is a computed predicate; an alert past its expiry is
		// filtered even before the sweeper writes the status change.
		if alert.IsExpired(now) {
			continue
		}
		ok, err := IsVisibleTo(ctx, db, alert, userID, role)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		_, isAcked := acked[alert.ID]
		if !isAcked {
			unacknowledged++
		}
		visible = append(visible, &models.AlertWithState{
			Alert:          *alert,
			IsAcknowledged: isAcked,
		})
	}

	sort.SliceStable(visible, func(i, j int) bool {
		ri, rj := visible[i].Priority.Rank(), visible[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})

	return &models.AlertList{
		Alerts:              visible,
		UnacknowledgedCount: unacknowledged,
		TotalCount:          len(visible),
	}, nil
}

// GetAlertForUser fetches one alert with computed state, enforcing the
// same visibility predicate as the listing.
func GetAlertForUser(ctx context.Context, db *sqlite.DB, log *slog.Logger, alertID models.AlertID, userID models.UserID) (*models.AlertWithState, error) {
	alert, err := db.GetAlert(ctx, alertID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	role, err := db.UserRole(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user role: %w", err)
	}
	visible, err := IsVisibleTo(ctx, db, alert, userID, role)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrAlertNotVisible
	}

	acks, err := db.ListAcknowledgements(ctx, alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to list acknowledgements: %w", err)
	}
	isAcked := false
	for _, ack := range acks {
		if ack.UserID == userID {
			isAcked = true
			break
		}
	}

	return &models.AlertWithState{
		Alert:            *alert,
		IsExpired:        alert.IsExpired(time.Now().UTC()),
		IsAcknowledged:   isAcked,
		Acknowledgements: acks,
	}, nil
}

// AcknowledgeAlert records a per-user receipt for an alert. The alert
// must exist and be visible to the user; a second acknowledgement by the
// same user returns ErrAlreadyAcknowledged. Acknowledgement never
// changes the alert's lifecycle status.
func AcknowledgeAlert(ctx context.Context, db *sqlite.DB, log *slog.Logger, alertID models.AlertID, userID models.UserID, notes string) (*models.AlertAcknowledgement, error) {
	alert, err := db.GetAlert(ctx, alertID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	// A non-active or expired alert is gone as far as acknowledgers are
	// concerned.
	if alert.Status != models.AlertStatusActive || alert.IsExpired(time.Now().UTC()) {
		return nil, ErrAlertNotFound
	}

	role, err := db.UserRole(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user role: %w", err)
	}
	visible, err := IsVisibleTo(ctx, db, alert, userID, role)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrAlertNotVisible
	}

	ack := &models.AlertAcknowledgement{
		AlertID: alertID,
		UserID:  userID,
		Notes:   notes,
	}
	if err := db.CreateAcknowledgement(ctx, ack); err != nil {
		if errors.Is(err, sqlite.ErrDuplicate) {
			return nil, ErrAlreadyAcknowledged
		}
		return nil, fmt.Errorf("failed to create acknowledgement: %w", err)
	}

	acksCounter.Inc()
	log.Info("alert acknowledged", "alert_id", alertID, "user_id", userID)
	return ack, nil
}

// ResolveAlert moves an alert to the resolved status.
func ResolveAlert(ctx context.Context, db *sqlite.DB, log *slog.Logger, alertID models.AlertID) error {
	if err := db.UpdateAlertStatus(ctx, alertID, models.AlertStatusResolved); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return ErrAlertNotFound
		}
		return fmt.Errorf("failed to resolve alert: %w", err)
	}
	log.Info("alert resolved", "alert_id", alertID)
	return nil
}

// ExpireDueAlerts flips every active alert past its expiry to expired.
// It is idempotent; the sweeper and the admin endpoint both call it.
func ExpireDueAlerts(ctx context.Context, db *sqlite.DB, log *slog.Logger) (int64, error) {
	count, err := db.ExpireDueAlerts(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to expire alerts: %w", err)
	}
	if count > 0 {
		metrics.GetOrCreateCounter("beacon_alerts_expired_total").Add(int(count))
		log.Info("expired due alerts", "count", count)
	}
	return count, nil
}
