package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campushq/beacon/pkg/models"
)

const (
	insertTransportEventQuery = `INSERT INTO transport_events (
    student_id,
    kind,
    route,
    stop,
    note,
    recorded_by
) VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, recorded_at`

	selectTransportEventBase = `SELECT
    id,
    student_id,
    kind,
    route,
    stop,
    note,
    recorded_by,
    recorded_at
FROM transport_events`
)

// CreateTransportEvent appends a bus event to the log.
func (db *DB) CreateTransportEvent(ctx context.Context, event *models.TransportEvent) error {
	if event == nil {
		return fmt.Errorf("transport event payload is required")
	}

	row := db.writeDB.QueryRowContext(ctx, insertTransportEventQuery,
		int64(event.StudentID),
		string(event.Kind),
		nullableString(event.Route),
		nullableString(event.Stop),
		nullableString(event.Note),
		int64(event.RecordedBy),
	)

	var (
		id         int64
		recordedAt time.Time
	)
	if err := row.Scan(&id, &recordedAt); err != nil {
		return fmt.Errorf("failed to insert transport event: %w", err)
	}

	event.ID = models.TransportEventID(id)
	event.RecordedAt = recordedAt
	return nil
}

// ListTransportEvents returns the bus event log for a student, newest
// first.
func (db *DB) ListTransportEvents(ctx context.Context, studentID models.StudentID) ([]*models.TransportEvent, error) {
	rows, err := db.readDB.QueryContext(ctx,
		selectTransportEventBase+" WHERE student_id = ? ORDER BY recorded_at DESC", int64(studentID))
	if err != nil {
		return nil, fmt.Errorf("failed to list transport events: %w", err)
	}
	defer rows.Close()

	var events []*models.TransportEvent
	for rows.Next() {
		event, err := scanTransportEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transport events: %w", err)
	}
	return events, nil
}

func scanTransportEvent(scanner interface{ Scan(dest ...any) error }) (*models.TransportEvent, error) {
	var (
		id         int64
		studentID  int64
		kind       string
		route      sql.NullString
		stop       sql.NullString
		note       sql.NullString
		recordedBy int64
		recordedAt time.Time
	)
	if err := scanner.Scan(&id, &studentID, &kind, &route, &stop, &note, &recordedBy, &recordedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transport event: %w", err)
	}
	return &models.TransportEvent{
		ID:         models.TransportEventID(id),
		StudentID:  models.StudentID(studentID),
		Kind:       models.TransportEventKind(kind),
		Route:      route.String,
		Stop:       stop.String,
		Note:       note.String,
		RecordedBy: models.UserID(recordedBy),
		RecordedAt: recordedAt,
	}, nil
}
