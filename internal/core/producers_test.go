package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campushq/beacon/pkg/models"
)

func TestCreateAcademicAlertGuards(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	ctx := context.Background()

	teacher := seedUser(t, db, "teacher@school.test", models.UserRoleTeacher)
	passingUser := seedUser(t, db, "passing@school.test", models.UserRoleStudent)
	failingUser := seedUser(t, db, "failing@school.test", models.UserRoleStudent)

	passing := &models.Student{UserID: passingUser, AttendanceRate: 95, AverageGrade: 82}
	require.NoError(t, db.CreateStudent(ctx, passing))
	failing := &models.Student{UserID: failingUser, AttendanceRate: 60, AverageGrade: 35}
	require.NoError(t, db.CreateStudent(ctx, failing))

	// Guard holds: failing grade below 50%.
	alert, err := CreateAcademicAlert(ctx, db, log, models.AcademicAlertRequest{
		Kind: "failing_grade", StudentID: failing.ID,
	}, teacher)
	require.NoError(t, err)
	require.Equal(t, models.AlertTypeAcademicPerformance, alert.Type)
	require.Contains(t, alert.Message, "35.0")

	// Guard blocks: student is passing.
	_, err = CreateAcademicAlert(ctx, db, log, models.AcademicAlertRequest{
		Kind: "failing_grade", StudentID: passing.ID,
	}, teacher)
	require.ErrorIs(t, err, ErrGuardNotMet)

	// Guard holds: attendance below 80%.
	alert, err = CreateAcademicAlert(ctx, db, log, models.AcademicAlertRequest{
		Kind: "attendance_concern", StudentID: failing.ID,
	}, teacher)
	require.NoError(t, err)
	require.Equal(t, models.AlertTypeAttendance, alert.Type)

	// Guard blocks: attendance fine.
	_, err = CreateAcademicAlert(ctx, db, log, models.AcademicAlertRequest{
		Kind: "attendance_concern", StudentID: passing.ID,
	}, teacher)
	require.ErrorIs(t, err, ErrGuardNotMet)

	// Achievement has no guard.
	alert, err = CreateAcademicAlert(ctx, db, log, models.AcademicAlertRequest{
		Kind: "positive_achievement", StudentID: passing.ID,
		Details: "Won the science fair.",
	}, teacher)
	require.NoError(t, err)
	require.Equal(t, models.AlertPriorityLow, alert.Priority)

	// Unknown kind.
	_, err = CreateAcademicAlert(ctx, db, log, models.AcademicAlertRequest{
		Kind: "vibes", StudentID: passing.ID,
	}, teacher)
	require.ErrorIs(t, err, ErrInvalidAlertPayload)

	// Unknown student.
	_, err = CreateAcademicAlert(ctx, db, log, models.AcademicAlertRequest{
		Kind: "failing_grade", StudentID: 9999,
	}, teacher)
	require.ErrorIs(t, err, ErrAlertNotFound)
}

func TestCreateParentMeetingAlert(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	ctx := context.Background()

	teacher := seedUser(t, db, "teacher@school.test", models.UserRoleTeacher)
	studentUser := seedUser(t, db, "student@school.test", models.UserRoleStudent)
	parentUser := seedUser(t, db, "parent@school.test", models.UserRoleParent)
	studentID := seedStudent(t, db, studentUser, &parentUser)

	alert, err := CreateParentMeetingAlert(ctx, db, log, models.ParentMeetingRequest{
		StudentID: studentID,
		Details:   "Regarding last week's incident.",
	}, teacher)
	require.NoError(t, err)
	require.Equal(t, models.AlertTypeParentMeeting, alert.Type)
	require.Contains(t, alert.Message, "teacher@school.test")
	require.True(t, alert.ActionRequired)

	// The parent sees the meeting request through relationship targeting.
	list, err := ListAlertsForUser(ctx, db, log, parentUser)
	require.NoError(t, err)
	require.Len(t, list.Alerts, 1)
	require.Equal(t, alert.ID, list.Alerts[0].ID)
}

func TestCreateEmergencyAlert(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	ctx := context.Background()

	admin := seedUser(t, db, "admin@school.test", models.UserRoleAdmin)
	mentor := seedUser(t, db, "mentor@school.test", models.UserRoleMentor)

	alert, err := CreateEmergencyAlert(ctx, db, log, models.EmergencyAlertRequest{
		Kind:    "bus_accident",
		Route:   "R7",
		Details: "Minor collision, all students safe.",
	}, admin)
	require.NoError(t, err)
	require.Equal(t, models.AlertPriorityEmergency, alert.Priority)
	require.Contains(t, alert.Title, "R7")

	// Emergencies broadcast to every role.
	list, err := ListAlertsForUser(ctx, db, log, mentor)
	require.NoError(t, err)
	require.Len(t, list.Alerts, 1)

	_, err = CreateEmergencyAlert(ctx, db, log, models.EmergencyAlertRequest{
		Kind: "earthquake",
	}, admin)
	require.ErrorIs(t, err, ErrInvalidAlertPayload)
}

func TestCreateFinancialAlert(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	ctx := context.Background()

	admin := seedUser(t, db, "admin@school.test", models.UserRoleAdmin)
	teacher := seedUser(t, db, "teacher@school.test", models.UserRoleTeacher)
	parent := seedUser(t, db, "parent@school.test", models.UserRoleParent)

	alert, err := CreateFinancialAlert(ctx, db, log, models.FinancialAlertRequest{
		Kind:     "budget_overrun",
		Category: "Lab equipment",
		Amount:   "$3,400",
	}, admin)
	require.NoError(t, err)
	require.Equal(t, models.AlertTypeFinancial, alert.Type)
	require.Contains(t, alert.Title, "Lab equipment")

	// Financial alerts target admins and teachers, never parents.
	adminList, err := ListAlertsForUser(ctx, db, log, admin)
	require.NoError(t, err)
	require.Len(t, adminList.Alerts, 1)

	teacherList, err := ListAlertsForUser(ctx, db, log, teacher)
	require.NoError(t, err)
	require.Len(t, teacherList.Alerts, 1)

	parentList, err := ListAlertsForUser(ctx, db, log, parent)
	require.NoError(t, err)
	require.Empty(t, parentList.Alerts)
}

func TestRecordTransportEvent(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	ctx := context.Background()

	driver := seedUser(t, db, "driver@school.test", models.UserRoleTeacher)
	studentUser := seedUser(t, db, "student@school.test", models.UserRoleStudent)
	parentUser := seedUser(t, db, "parent@school.test", models.UserRoleParent)

	student := &models.Student{
		UserID:         studentUser,
		ParentUserID:   &parentUser,
		BusStop:        "Oak Ave",
		AttendanceRate: 100,
	}
	require.NoError(t, db.CreateStudent(ctx, student))

	event, alert, err := RecordTransportEvent(ctx, db, log, models.RecordTransportEventRequest{
		StudentID: student.ID,
		Kind:      models.TransportEventBoarded,
		Route:     "R3",
	}, driver)
	require.NoError(t, err)
	require.NotZero(t, event.ID)
	// Stop falls back to the student's registered bus stop.
	require.Equal(t, "Oak Ave", event.Stop)
	require.NotNil(t, alert)
	require.Equal(t, models.AlertTypeTransportSafety, alert.Type)
	require.Contains(t, alert.Message, "Oak Ave")

	// The parent receives the boarding alert.
	list, err := ListAlertsForUser(ctx, db, log, parentUser)
	require.NoError(t, err)
	require.Len(t, list.Alerts, 1)

	// The log keeps every event.
	events, err := ListTransportEvents(ctx, db, student.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)

	_, _, err = RecordTransportEvent(ctx, db, log, models.RecordTransportEventRequest{
		StudentID: student.ID,
		Kind:      "teleported",
	}, driver)
	require.ErrorIs(t, err, ErrInvalidAlertPayload)

	_, _, err = RecordTransportEvent(ctx, db, log, models.RecordTransportEventRequest{
		StudentID: 9999,
		Kind:      models.TransportEventBoarded,
	}, driver)
	require.ErrorIs(t, err, ErrAlertNotFound)
}

func TestScenarioNames(t *testing.T) {
	names := ScenarioNames()
	require.Len(t, names, len(scenarios))
	require.IsIncreasing(t, names)
	require.Contains(t, names, "student_safety_emergency")
	require.Contains(t, names, "bus_delayed")
	require.Contains(t, names, "budget_overrun")
}
