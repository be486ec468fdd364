package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campushq/beacon/pkg/models"
)

const (
	insertAlertQuery = `INSERT INTO alerts (
    title,
    message,
    alert_type,
    priority,
    status,
    target_users,
    target_user_types,
    student_id,
    created_by,
    expires_at,
    action_required,
    action_url,
    action_text
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, created_at, updated_at`

	selectAlertBase = `SELECT
    id,
    title,
    message,
    alert_type,
    priority,
    status,
    target_users,
    target_user_types,
    student_id,
    created_by,
    created_at,
    updated_at,
    expires_at,
    action_required,
    action_url,
    action_text
FROM alerts`

	updateAlertStatusQuery = `UPDATE alerts
SET status = ?,
    updated_at = datetime('now')
WHERE id = ?`

	expireDueAlertsQuery = `UPDATE alerts
SET status = 'expired',
    updated_at = datetime('now')
WHERE status = 'active'
  AND expires_at IS NOT NULL
  AND expires_at < ?`

	insertAcknowledgementQuery = `INSERT INTO alert_acknowledgements (
    alert_id,
    user_id,
    notes
) VALUES (?, ?, ?)
RETURNING id, acknowledged_at`

	selectAcknowledgementBase = `SELECT
    id,
    alert_id,
    user_id,
    acknowledged_at,
    notes
FROM alert_acknowledgements`
)

// CreateAlert inserts a new alert and populates its ID and timestamps.
func (db *DB) CreateAlert(ctx context.Context, alert *models.Alert) error {
	if alert == nil {
		return fmt.Errorf("alert payload is required")
	}

	targetUsersJSON, err := json.Marshal(alert.TargetUserIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal target users: %w", err)
	}
	targetRolesJSON, err := json.Marshal(alert.TargetRoles)
	if err != nil {
		return fmt.Errorf("failed to marshal target roles: %w", err)
	}

	var studentID any
	if alert.StudentID != nil {
		studentID = int64(*alert.StudentID)
	}
	var expiresAt any
	if alert.ExpiresAt != nil {
		expiresAt = alert.ExpiresAt.UTC()
	}

	row := db.writeDB.QueryRowContext(ctx, insertAlertQuery,
		alert.Title,
		alert.Message,
		string(alert.Type),
		string(alert.Priority),
		string(alert.Status),
		string(targetUsersJSON),
		string(targetRolesJSON),
		studentID,
		int64(alert.CreatedBy),
		expiresAt,
		boolToInt(alert.ActionRequired),
		nullableString(alert.ActionURL),
		nullableString(alert.ActionText),
	)

	var (
		id        int64
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &createdAt, &updatedAt); err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	alert.ID = models.AlertID(id)
	alert.CreatedAt = createdAt
	alert.UpdatedAt = updatedAt
	return nil
}

// GetAlert retrieves an alert by its identifier.
func (db *DB) GetAlert(ctx context.Context, alertID models.AlertID) (*models.Alert, error) {
	row := db.readDB.QueryRowContext(ctx, selectAlertBase+" WHERE id = ?", int64(alertID))
	alert, err := scanAlert(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return alert, nil
}

// ListActiveAlerts returns all alerts with status active, newest first.
// Expiry is not filtered here; callers apply the expiry predicate.
func (db *DB) ListActiveAlerts(ctx context.Context) ([]*models.Alert, error) {
	rows, err := db.readDB.QueryContext(ctx, selectAlertBase+" WHERE status = 'active' ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active alerts: %w", err)
	}
	return alerts, nil
}

// UpdateAlertStatus moves an alert to the given lifecycle status.
func (db *DB) UpdateAlertStatus(ctx context.Context, alertID models.AlertID, status models.AlertStatus) error {
	res, err := db.writeDB.ExecContext(ctx, updateAlertStatusQuery, string(status), int64(alertID))
	if err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpireDueAlerts flips every active alert past its expiry to expired and
// returns the number of rows touched. Re-running it is a no-op.
func (db *DB) ExpireDueAlerts(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.writeDB.ExecContext(ctx, expireDueAlertsQuery, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to expire due alerts: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows, nil
}

// CreateAcknowledgement inserts an acknowledgement row. The UNIQUE
// constraint on (alert_id, user_id) serializes concurrent acknowledgers;
// the loser observes ErrDuplicate.
func (db *DB) CreateAcknowledgement(ctx context.Context, ack *models.AlertAcknowledgement) error {
	if ack == nil {
		return fmt.Errorf("acknowledgement payload is required")
	}

	row := db.writeDB.QueryRowContext(ctx, insertAcknowledgementQuery,
		int64(ack.AlertID),
		int64(ack.UserID),
		nullableString(ack.Notes),
	)

	var (
		id             int64
		acknowledgedAt time.Time
	)
	if err := row.Scan(&id, &acknowledgedAt); err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert acknowledgement: %w", err)
	}

	ack.ID = models.AcknowledgementID(id)
	ack.AcknowledgedAt = acknowledgedAt
	return nil
}

// ListAcknowledgements returns all acknowledgements for an alert, most
// recent first.
func (db *DB) ListAcknowledgements(ctx context.Context, alertID models.AlertID) ([]*models.AlertAcknowledgement, error) {
	rows, err := db.readDB.QueryContext(ctx,
		selectAcknowledgementBase+" WHERE alert_id = ? ORDER BY acknowledged_at DESC", int64(alertID))
	if err != nil {
		return nil, fmt.Errorf("failed to list acknowledgements: %w", err)
	}
	defer rows.Close()

	var acks []*models.AlertAcknowledgement
	for rows.Next() {
		ack, err := scanAcknowledgement(rows)
		if err != nil {
			return nil, err
		}
		acks = append(acks, ack)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating acknowledgements: %w", err)
	}
	return acks, nil
}

// AcknowledgedAlertIDs returns the set of alert IDs the user has
// acknowledged, for computing unacknowledged counts in one pass.
func (db *DB) AcknowledgedAlertIDs(ctx context.Context, userID models.UserID) (map[models.AlertID]struct{}, error) {
	rows, err := db.readDB.QueryContext(ctx,
		"SELECT alert_id FROM alert_acknowledgements WHERE user_id = ?", int64(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list acknowledged alert ids: %w", err)
	}
	defer rows.Close()

	acked := make(map[models.AlertID]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan acknowledged alert id: %w", err)
		}
		acked[models.AlertID(id)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating acknowledged alert ids: %w", err)
	}
	return acked, nil
}

func scanAlert(scanner interface{ Scan(dest ...any) error }) (*models.Alert, error) {
	var (
		id              int64
		title           string
		message         string
		alertType       string
		priority        string
		status          string
		targetUsersJSON string
		targetRolesJSON string
		studentID       sql.NullInt64
		createdBy       int64
		createdAt       time.Time
		updatedAt       time.Time
		expiresAt       sql.NullTime
		actionRequired  int64
		actionURL       sql.NullString
		actionText      sql.NullString
	)
	if err := scanner.Scan(&id, &title, &message, &alertType, &priority, &status,
		&targetUsersJSON, &targetRolesJSON, &studentID, &createdBy,
		&createdAt, &updatedAt, &expiresAt, &actionRequired, &actionURL, &actionText); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}

	var targetUsers []models.UserID
	if targetUsersJSON != "" {
		if err := json.Unmarshal([]byte(targetUsersJSON), &targetUsers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal target users: %w", err)
		}
	}
	var targetRoles []models.UserRole
	if targetRolesJSON != "" {
		if err := json.Unmarshal([]byte(targetRolesJSON), &targetRoles); err != nil {
			return nil, fmt.Errorf("failed to unmarshal target roles: %w", err)
		}
	}

	alert := &models.Alert{
		ID:             models.AlertID(id),
		Title:          title,
		Message:        message,
		Type:           models.AlertType(alertType),
		Priority:       models.AlertPriority(priority),
		Status:         models.AlertStatus(status),
		TargetUserIDs:  targetUsers,
		TargetRoles:    targetRoles,
		CreatedBy:      models.UserID(createdBy),
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
		ActionRequired: actionRequired == 1,
		ActionURL:      actionURL.String,
		ActionText:     actionText.String,
	}
	if studentID.Valid {
		sid := models.StudentID(studentID.Int64)
		alert.StudentID = &sid
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		alert.ExpiresAt = &t
	}
	return alert, nil
}

func scanAcknowledgement(scanner interface{ Scan(dest ...any) error }) (*models.AlertAcknowledgement, error) {
	var (
		id             int64
		alertID        int64
		userID         int64
		acknowledgedAt time.Time
		notes          sql.NullString
	)
	if err := scanner.Scan(&id, &alertID, &userID, &acknowledgedAt, &notes); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan acknowledgement: %w", err)
	}
	return &models.AlertAcknowledgement{
		ID:             models.AcknowledgementID(id),
		AlertID:        models.AlertID(alertID),
		UserID:         models.UserID(userID),
		AcknowledgedAt: acknowledgedAt,
		Notes:          notes.String,
	}, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
