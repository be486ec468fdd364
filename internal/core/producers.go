package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/campushq/beacon/internal/sqlite"
	"github.com/campushq/beacon/pkg/models"
)

// ErrGuardNotMet is returned when an academic alert's data guard does
// not hold, e.g. a failing-grade alert for a student who is passing.
var ErrGuardNotMet = errors.New("alert condition not met")

// Guard thresholds for the academic producers.
const (
	attendanceConcernThreshold = 80.0
	failingGradeThreshold      = 50.0
)

// CreateEmergencyAlert broadcasts an emergency. Student-scoped
// emergencies also target the student and their parent; school-wide ones
// reach every role.
func CreateEmergencyAlert(ctx context.Context, db *sqlite.DB, log *slog.Logger, req models.EmergencyAlertRequest, createdBy models.UserID) (*models.Alert, error) {
	var scenario string
	renderCtx := map[string]string{"details": req.Details}
	switch req.Kind {
	case "safety":
		scenario = "student_safety_emergency"
	case "medical":
		scenario = "medical_emergency"
	case "bus_accident":
		scenario = "bus_accident"
		renderCtx["route"] = req.Route
	default:
		return nil, fmt.Errorf("%w: unknown emergency kind %q", ErrInvalidAlertPayload, req.Kind)
	}

	targeting := ScenarioTargeting{
		Roles: []models.UserRole{
			models.UserRoleStudent, models.UserRoleTeacher, models.UserRoleParent,
			models.UserRoleAdmin, models.UserRoleMentor,
		},
		StudentID: req.StudentID,
	}
	return CreateScenarioAlert(ctx, db, log, scenario, renderCtx, targeting, createdBy)
}

// CreateFinancialAlert raises a financial alert targeted at
// administrators and teachers.
func CreateFinancialAlert(ctx context.Context, db *sqlite.DB, log *slog.Logger, req models.FinancialAlertRequest, createdBy models.UserID) (*models.Alert, error) {
	var scenario string
	renderCtx := map[string]string{"amount": req.Amount}
	switch req.Kind {
	case "irregularity":
		scenario = "financial_irregularity"
		renderCtx["details"] = req.Details
	case "budget_overrun":
		scenario = "budget_overrun"
		renderCtx["category"] = req.Category
	default:
		return nil, fmt.Errorf("%w: unknown financial alert kind %q", ErrInvalidAlertPayload, req.Kind)
	}

	targeting := ScenarioTargeting{Roles: []models.UserRole{models.UserRoleAdmin, models.UserRoleTeacher}}
	return CreateScenarioAlert(ctx, db, log, scenario, renderCtx, targeting, createdBy)
}

// CreateParentMeetingAlert asks a student's parent for an urgent
// meeting. The requesting teacher's name is rendered into the message.
func CreateParentMeetingAlert(ctx context.Context, db *sqlite.DB, log *slog.Logger, req models.ParentMeetingRequest, createdBy models.UserID) (*models.Alert, error) {
	teacher, err := db.GetUser(ctx, createdBy)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve requesting teacher: %w", err)
	}

	sid := req.StudentID
	targeting := ScenarioTargeting{StudentID: &sid}
	renderCtx := map[string]string{
		"teacher_name": teacher.FullName,
		"details":      req.Details,
	}
	return CreateScenarioAlert(ctx, db, log, "urgent_meeting", renderCtx, targeting, createdBy)
}

// CreateAcademicAlert raises an academic standing alert. The
// failing_grade and attendance_concern kinds are guarded by the
// student's current data: a failing-grade alert requires an average
// below 50%, an attendance alert an attendance rate below 80%.
func CreateAcademicAlert(ctx context.Context, db *sqlite.DB, log *slog.Logger, req models.AcademicAlertRequest, createdBy models.UserID) (*models.Alert, error) {
	student, err := db.Student(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, fmt.Errorf("%w: student %d", ErrAlertNotFound, req.StudentID)
		}
		return nil, fmt.Errorf("failed to resolve student: %w", err)
	}

	renderCtx := map[string]string{"details": req.Details}
	switch req.Kind {
	case "failing_grade":
		if student.AverageGrade >= failingGradeThreshold {
			return nil, fmt.Errorf("%w: average grade %.1f%% is not failing", ErrGuardNotMet, student.AverageGrade)
		}
		renderCtx["average_grade"] = strconv.FormatFloat(student.AverageGrade, 'f', 1, 64)
	case "attendance_concern":
		if student.AttendanceRate >= attendanceConcernThreshold {
			return nil, fmt.Errorf("%w: attendance rate %.1f%% is not concerning", ErrGuardNotMet, student.AttendanceRate)
		}
		renderCtx["attendance_rate"] = strconv.FormatFloat(student.AttendanceRate, 'f', 1, 64)
	case "behavior_concern", "positive_achievement":
		// No data guard.
	default:
		return nil, fmt.Errorf("%w: unknown academic alert kind %q", ErrInvalidAlertPayload, req.Kind)
	}

	sid := req.StudentID
	targeting := ScenarioTargeting{StudentID: &sid}
	return CreateScenarioAlert(ctx, db, log, req.Kind, renderCtx, targeting, createdBy)
}
