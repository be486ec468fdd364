package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campushq/beacon/internal/sqlite"
	"github.com/campushq/beacon/pkg/models"
)

// RecordTransportEvent appends a bus event to the student's log and fans
// out the matching transport alert to the student and their parent. The
// alert failing never rolls back the event: the log entry is the record
// of fact.
func RecordTransportEvent(ctx context.Context, db *sqlite.DB, log *slog.Logger, req models.RecordTransportEventRequest, recordedBy models.UserID) (*models.TransportEvent, *models.Alert, error) {
	if !models.ValidTransportEventKind(req.Kind) {
		return nil, nil, fmt.Errorf("%w: unknown transport event kind %q", ErrInvalidAlertPayload, req.Kind)
	}

	student, err := db.Student(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: student %d", ErrAlertNotFound, req.StudentID)
		}
		return nil, nil, fmt.Errorf("failed to resolve student: %w", err)
	}

	stop := req.Stop
	if stop == "" {
		stop = student.BusStop
	}

	event := &models.TransportEvent{
		StudentID:  req.StudentID,
		Kind:       req.Kind,
		Route:      req.Route,
		Stop:       stop,
		Note:       req.Note,
		RecordedBy: recordedBy,
	}
	if err := db.CreateTransportEvent(ctx, event); err != nil {
		return nil, nil, fmt.Errorf("failed to record transport event: %w", err)
	}

	renderCtx := map[string]string{"stop": stop}
	if req.Kind == models.TransportEventDelayed {
		renderCtx = map[string]string{
			"route":   req.Route,
			"details": req.Note,
		}
	}

	sid := req.StudentID
	alert, err := CreateScenarioAlert(ctx, db, log, string(req.Kind), renderCtx,
		ScenarioTargeting{StudentID: &sid}, recordedBy)
	if err != nil {
		log.Error("transport event recorded but alert creation failed",
			"error", err, "event_id", event.ID, "kind", req.Kind)
		return event, nil, nil
	}

	return event, alert, nil
}

// ListTransportEvents returns the bus event log for a student.
func ListTransportEvents(ctx context.Context, db *sqlite.DB, studentID models.StudentID) ([]*models.TransportEvent, error) {
	events, err := db.ListTransportEvents(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transport events: %w", err)
	}
	return events, nil
}
