package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/campushq/beacon/internal/sqlite"
	"github.com/campushq/beacon/internal/template"
	"github.com/campushq/beacon/pkg/models"
)

// ErrUnknownScenario is returned when a scenario name has no entry in the
// built-in table.
var ErrUnknownScenario = errors.New("unknown alert scenario")

// Scenario is a built-in alert recipe: a template plus creation
// defaults. Unlike stored templates these ship with the binary and back
// the specialized endpoints.
type Scenario struct {
	Type           models.AlertType
	Priority       models.AlertPriority
	Title          string
	Message        string
	ExpiryHours    int
	ActionRequired bool
}

// scenarios is the built-in recipe table keyed by scenario name.
var scenarios = map[string]Scenario{
	"student_safety_emergency": {
		Type:           models.AlertTypeSchoolSafety,
		Priority:       models.AlertPriorityEmergency,
		Title:          "EMERGENCY: {{student_name}} needs attention",
		Message:        "{{details}}",
		ExpiryHours:    4,
		ActionRequired: true,
	},
	"medical_emergency": {
		Type:           models.AlertTypeHealthWellness,
		Priority:       models.AlertPriorityEmergency,
		Title:          "MEDICAL EMERGENCY: {{student_name}}",
		Message:        "{{details}}",
		ExpiryHours:    4,
		ActionRequired: true,
	},
	"bus_accident": {
		Type:           models.AlertTypeTransportSafety,
		Priority:       models.AlertPriorityEmergency,
		Title:          "Bus incident on route {{route}}",
		Message:        "A transport incident has been reported on route {{route}}. {{details}}",
		ExpiryHours:    8,
		ActionRequired: true,
	},
	"financial_irregularity": {
		Type:        models.AlertTypeFinancial,
		Priority:    models.AlertPriorityHigh,
		Title:       "Financial irregularity detected",
		Message:     "{{details}} Amount involved: {{amount}}.",
		ExpiryHours: 72,
	},
	"budget_overrun": {
		Type:        models.AlertTypeFinancial,
		Priority:    models.AlertPriorityHigh,
		Title:       "Budget overrun: {{category}}",
		Message:     "Spending in {{category}} has exceeded its budget by {{amount}}.",
		ExpiryHours: 72,
	},
	"failing_grade": {
		Type:           models.AlertTypeAcademicPerformance,
		Priority:       models.AlertPriorityHigh,
		Title:          "Academic alert for {{student_name}}",
		Message:        "{{student_name}}'s average grade is {{average_grade}}%. A meeting with the class teacher is recommended.",
		ExpiryHours:    168,
		ActionRequired: true,
	},
	"attendance_concern": {
		Type:           models.AlertTypeAttendance,
		Priority:       models.AlertPriorityHigh,
		Title:          "Attendance concern for {{student_name}}",
		Message:        "{{student_name}}'s attendance has dropped to {{attendance_rate}}%. Please contact the school office.",
		ExpiryHours:    168,
		ActionRequired: true,
	},
	"urgent_meeting": {
		Type:           models.AlertTypeParentMeeting,
		Priority:       models.AlertPriorityHigh,
		Title:          "Urgent meeting request: {{student_name}}",
		Message:        "{{teacher_name}} requests a meeting regarding {{student_name}}. {{details}}",
		ExpiryHours:    48,
		ActionRequired: true,
	},
	"positive_achievement": {
		Type:        models.AlertTypeAchievement,
		Priority:    models.AlertPriorityLow,
		Title:       "Great news about {{student_name}}!",
		Message:     "{{details}}",
		ExpiryHours: 168,
	},
	"behavior_concern": {
		Type:           models.AlertTypeBehavior,
		Priority:       models.AlertPriorityMedium,
		Title:          "Behavior note for {{student_name}}",
		Message:        "{{details}}",
		ExpiryHours:    72,
		ActionRequired: true,
	},
	"bus_boarded": {
		Type:        models.AlertTypeTransportSafety,
		Priority:    models.AlertPriorityLow,
		Title:       "{{student_name}} boarded the bus",
		Message:     "{{student_name}} boarded the bus at {{stop}}.",
		ExpiryHours: 6,
	},
	"bus_departed": {
		Type:        models.AlertTypeTransportSafety,
		Priority:    models.AlertPriorityLow,
		Title:       "{{student_name}} left the bus",
		Message:     "{{student_name}} got off the bus at {{stop}}.",
		ExpiryHours: 6,
	},
	"bus_delayed": {
		Type:        models.AlertTypeTransportSafety,
		Priority:    models.AlertPriorityMedium,
		Title:       "Bus delayed on route {{route}}",
		Message:     "The bus serving {{student_name}} is delayed. {{details}}",
		ExpiryHours: 6,
	},
}

// ScenarioNames returns the names of all built-in scenarios, sorted.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScenarioTargeting carries the recipient sets for a scenario alert.
type ScenarioTargeting struct {
	UserIDs   []models.UserID
	Roles     []models.UserRole
	StudentID *models.StudentID
}

// CreateScenarioAlert renders a built-in scenario and creates the alert.
// When the targeting references a student, the student's name is added
// to the render context automatically.
func CreateScenarioAlert(ctx context.Context, db *sqlite.DB, log *slog.Logger, name string, renderCtx map[string]string, targeting ScenarioTargeting, createdBy models.UserID) (*models.Alert, error) {
	scenario, ok := scenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}

	if renderCtx == nil {
		renderCtx = make(map[string]string)
	}
	if targeting.StudentID != nil {
		if _, ok := renderCtx["student_name"]; !ok {
			student, err := db.Student(ctx, *targeting.StudentID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve student: %w", err)
			}
			user, err := db.GetUser(ctx, student.UserID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve student user: %w", err)
			}
			renderCtx["student_name"] = user.FullName
		}
	}

	title, message, err := template.Render(&models.AlertTemplate{
		Name:            name,
		TitleTemplate:   scenario.Title,
		MessageTemplate: scenario.Message,
	}, renderCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAlertPayload, err)
	}

	var expiresAt *time.Time
	if scenario.ExpiryHours > 0 {
		t := time.Now().UTC().Add(time.Duration(scenario.ExpiryHours) * time.Hour)
		expiresAt = &t
	}

	return CreateAlert(ctx, db, log, models.CreateAlertRequest{
		Title:          title,
		Message:        message,
		Type:           scenario.Type,
		Priority:       scenario.Priority,
		TargetUserIDs:  targeting.UserIDs,
		TargetRoles:    targeting.Roles,
		StudentID:      targeting.StudentID,
		ExpiresAt:      expiresAt,
		ActionRequired: scenario.ActionRequired,
	}, createdBy)
}
