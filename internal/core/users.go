package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/campushq/beacon/internal/sqlite"
	"github.com/campushq/beacon/pkg/models"
)

var (
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when creating a user whose email is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUserPayload is returned when a user or student creation
	// request fails validation.
	ErrInvalidUserPayload = errors.New("invalid user payload")
)

// CreateUser validates and creates a directory user.
func CreateUser(ctx context.Context, db *sqlite.DB, log *slog.Logger, req models.CreateUserRequest) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidUserPayload)
	}
	if req.FullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrInvalidUserPayload)
	}
	if !models.ValidUserRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidUserPayload, req.Role)
	}

	user := &models.User{
		Email:    email,
		FullName: req.FullName,
		Role:     req.Role,
		Status:   models.UserStatusActive,
	}
	if err := db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, sqlite.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// CreateStudent enrols a student record. The linked user must carry the
// student role; a linked parent must carry the parent role.
func CreateStudent(ctx context.Context, db *sqlite.DB, log *slog.Logger, req models.CreateStudentRequest) (*models.Student, error) {
	user, err := db.GetUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrUserNotFound, req.UserID)
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if user.Role != models.UserRoleStudent {
		return nil, fmt.Errorf("%w: user %d is not a student", ErrInvalidUserPayload, req.UserID)
	}

	if req.ParentUserID != nil {
		parent, err := db.GetUser(ctx, *req.ParentUserID)
		if err != nil {
			if errors.Is(err, sqlite.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent user %d", ErrUserNotFound, *req.ParentUserID)
			}
			return nil, fmt.Errorf("failed to resolve parent: %w", err)
		}
		if parent.Role != models.UserRoleParent {
			return nil, fmt.Errorf("%w: user %d is not a parent", ErrInvalidUserPayload, *req.ParentUserID)
		}
	}

	if req.AttendanceRate < 0 || req.AttendanceRate > 100 {
		return nil, fmt.Errorf("%w: attendance rate must be between 0 and 100", ErrInvalidUserPayload)
	}
	if req.AverageGrade < 0 || req.AverageGrade > 100 {
		return nil, fmt.Errorf("%w: average grade must be between 0 and 100", ErrInvalidUserPayload)
	}

	student := &models.Student{
		UserID:         req.UserID,
		ParentUserID:   req.ParentUserID,
		GradeLevel:     req.GradeLevel,
		BusStop:        req.BusStop,
		AttendanceRate: req.AttendanceRate,
		AverageGrade:   req.AverageGrade,
	}
	if err := db.CreateStudent(ctx, student); err != nil {
		if errors.Is(err, sqlite.ErrDuplicate) {
			return nil, fmt.Errorf("%w: user %d is already enrolled", ErrInvalidUserPayload, req.UserID)
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	log.Info("student enrolled", "student_id", student.ID, "user_id", student.UserID)
	return student, nil
}

// IssueSessionToken mints a bearer token for the user. The token value
// is returned exactly once.
func IssueSessionToken(ctx context.Context, db *sqlite.DB, log *slog.Logger, userID models.UserID) (*models.SessionToken, error) {
	if _, err := db.GetUser(ctx, userID); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	tok := &models.SessionToken{
		UserID: userID,
		Token:  uuid.New().String(),
	}
	if err := db.CreateSessionToken(ctx, tok); err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	log.Info("session token issued", "user_id", userID)
	return tok, nil
}

// InitAdminUsers ensures an admin account exists for every configured
// admin email. Existing accounts are left untouched.
func InitAdminUsers(ctx context.Context, db *sqlite.DB, log *slog.Logger, adminEmails []string) error {
	for _, email := range adminEmails {
		email = strings.TrimSpace(strings.ToLower(email))
		local, _, ok := strings.Cut(email, "@")
		if !ok || local == "" {
			log.Warn("skipping malformed admin email", "email", email)
			continue
		}

		if _, err := db.GetUserByEmail(ctx, email); err == nil {
			continue
		} else if !errors.Is(err, sqlite.ErrNotFound) {
			return fmt.Errorf("failed to look up admin user %q: %w", email, err)
		}

		user := &models.User{
			Email:    email,
			FullName: local,
			Role:     models.UserRoleAdmin,
			Status:   models.UserStatusActive,
		}
		if err := db.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to create admin user %q: %w", email, err)
		}
		log.Info("admin user created", "user_id", user.ID, "email", email)
	}
	return nil
}
