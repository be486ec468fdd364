package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campushq/beacon/pkg/models"
)

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	ctx := context.Background()

	user, err := CreateUser(ctx, db, log, models.CreateUserRequest{
		Email:    "Teacher@School.Test",
		FullName: "R. Iyer",
		Role:     models.UserRoleTeacher,
	})
	require.NoError(t, err)
	require.Equal(t, "teacher@school.test", user.Email)
	require.Equal(t, models.UserStatusActive, user.Status)

	// Duplicate email.
	_, err = CreateUser(ctx, db, log, models.CreateUserRequest{
		Email: "teacher@school.test", FullName: "Other", Role: models.UserRoleTeacher,
	})
	require.ErrorIs(t, err, ErrUserExists)

	// Invalid inputs.
	_, err = CreateUser(ctx, db, log, models.CreateUserRequest{
		Email: "not-an-email", FullName: "X", Role: models.UserRoleTeacher,
	})
	require.ErrorIs(t, err, ErrInvalidUserPayload)

	_, err = CreateUser(ctx, db, log, models.CreateUserRequest{
		Email: "x@school.test", FullName: "X", Role: "janitor",
	})
	require.ErrorIs(t, err, ErrInvalidUserPayload)
}

func TestCreateStudent(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	ctx := context.Background()

	studentUser := seedUser(t, db, "student@school.test", models.UserRoleStudent)
	parentUser := seedUser(t, db, "parent@school.test", models.UserRoleParent)
	teacher := seedUser(t, db, "teacher@school.test", models.UserRoleTeacher)

	student, err := CreateStudent(ctx, db, log, models.CreateStudentRequest{
		UserID:         studentUser,
		ParentUserID:   &parentUser,
		GradeLevel:     "7",
		AttendanceRate: 92,
		AverageGrade:   71,
	})
	require.NoError(t, err)
	require.NotZero(t, student.ID)

	// One student record per user.
	_, err = CreateStudent(ctx, db, log, models.CreateStudentRequest{
		UserID: studentUser, AttendanceRate: 92, AverageGrade: 71,
	})
	require.ErrorIs(t, err, ErrInvalidUserPayload)

	// The linked user must carry the student role.
	_, err = CreateStudent(ctx, db, log, models.CreateStudentRequest{
		UserID: teacher, AttendanceRate: 92, AverageGrade: 71,
	})
	require.ErrorIs(t, err, ErrInvalidUserPayload)

	// The linked parent must carry the parent role.
	other := seedUser(t, db, "other@school.test", models.UserRoleStudent)
	_, err = CreateStudent(ctx, db, log, models.CreateStudentRequest{
		UserID: other, ParentUserID: &teacher, AttendanceRate: 92, AverageGrade: 71,
	})
	require.ErrorIs(t, err, ErrInvalidUserPayload)

	// Unknown user.
	_, err = CreateStudent(ctx, db, log, models.CreateStudentRequest{
		UserID: 9999, AttendanceRate: 92, AverageGrade: 71,
	})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestIssueSessionToken(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	ctx := context.Background()

	admin := seedUser(t, db, "admin@school.test", models.UserRoleAdmin)

	tok, err := IssueSessionToken(ctx, db, log, admin)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	resolved, err := db.GetUserBySessionToken(ctx, tok.Token)
	require.NoError(t, err)
	require.Equal(t, admin, resolved.ID)

	_, err = IssueSessionToken(ctx, db, log, 9999)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestInitAdminUsers(t *testing.T) {
	db := newTestDB(t)
	log := testLogger()
	ctx := context.Background()

	require.NoError(t, InitAdminUsers(ctx, db, log,
		[]string{"head@school.test", "  OPS@School.Test ", "malformed", ""}))

	head, err := db.GetUserByEmail(ctx, "head@school.test")
	require.NoError(t, err)
	require.Equal(t, models.UserRoleAdmin, head.Role)
	require.Equal(t, "head", head.FullName)

	ops, err := db.GetUserByEmail(ctx, "ops@school.test")
	require.NoError(t, err)
	require.Equal(t, models.UserRoleAdmin, ops.Role)

	// Re-running is a no-op for existing accounts.
	require.NoError(t, InitAdminUsers(ctx, db, log, []string{"head@school.test"}))
	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
}
