package server

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/campushq/beacon/internal/core"
	"github.com/campushq/beacon/internal/sqlite"
	"github.com/campushq/beacon/pkg/models"
)

// handleListUsers returns all directory users.
// URL: GET /api/v1/users
func (s *Server) handleListUsers(c *fiber.Ctx) error {
	users, err := s.sqlite.ListUsers(c.Context())
	if err != nil {
		s.log.Error("failed to list users", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to list users", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, users)
}

// handleCreateUser creates a directory user.
// URL: POST /api/v1/users
func (s *Server) handleCreateUser(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}

	user, err := core.CreateUser(c.Context(), s.sqlite, s.log, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrUserExists):
			return SendErrorWithType(c, fiber.StatusConflict, err.Error(), models.ConflictErrorType)
		case errors.Is(err, core.ErrInvalidUserPayload):
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		}
		s.log.Error("failed to create user", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to create user", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusCreated, user)
}

// handleIssueSessionToken mints a bearer token for a user. The token
// value is returned exactly once.
// URL: POST /api/v1/users/:userID/tokens
func (s *Server) handleIssueSessionToken(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("userID"), 10, 64)
	if err != nil || id <= 0 {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid user ID", models.ValidationErrorType)
	}

	tok, err := core.IssueSessionToken(c.Context(), s.sqlite, s.log, models.UserID(id))
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return SendErrorWithType(c, fiber.StatusNotFound, "User not found", models.NotFoundErrorType)
		}
		s.log.Error("failed to issue session token", "user_id", id, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to issue token", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusCreated, tok)
}

// handleListSessionTokens returns token metadata for a user. Token
// values are never echoed back.
// URL: GET /api/v1/users/:userID/tokens
func (s *Server) handleListSessionTokens(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("userID"), 10, 64)
	if err != nil || id <= 0 {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid user ID", models.ValidationErrorType)
	}

	tokens, err := s.sqlite.ListSessionTokens(c.Context(), models.UserID(id))
	if err != nil {
		s.log.Error("failed to list session tokens", "user_id", id, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to list tokens", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, tokens)
}

// handleLogout revokes the session token used for this request.
// URL: POST /api/v1/auth/logout
func (s *Server) handleLogout(c *fiber.Ctx) error {
	token, _ := c.Locals(tokenLocalKey).(string)
	if token == "" {
		return SendErrorWithType(c, fiber.StatusUnauthorized, "Authentication required", models.AuthErrorType)
	}

	if err := s.sqlite.DeleteSessionToken(c.Context(), token); err != nil && !errors.Is(err, sqlite.ErrNotFound) {
		s.log.Error("failed to revoke session token", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to log out", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"message": "Logged out"})
}

// handleGetMyStudent returns the student record linked to the
// authenticated user.
// URL: GET /api/v1/students/me
func (s *Server) handleGetMyStudent(c *fiber.Ctx) error {
	student, err := s.sqlite.StudentByUserID(c.Context(), currentUser(c).ID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return SendErrorWithType(c, fiber.StatusNotFound, "No student record for this user", models.NotFoundErrorType)
		}
		s.log.Error("failed to get student record", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to get student record", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, student)
}

// handleListStudents returns all student records.
// URL: GET /api/v1/students
func (s *Server) handleListStudents(c *fiber.Ctx) error {
	students, err := s.sqlite.ListStudents(c.Context())
	if err != nil {
		s.log.Error("failed to list students", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to list students", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, students)
}

// handleCreateStudent enrols a student record.
// URL: POST /api/v1/students
func (s *Server) handleCreateStudent(c *fiber.Ctx) error {
	var req models.CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}

	student, err := core.CreateStudent(c.Context(), s.sqlite, s.log, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrUserNotFound):
			return SendErrorWithType(c, fiber.StatusNotFound, err.Error(), models.NotFoundErrorType)
		case errors.Is(err, core.ErrInvalidUserPayload):
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		}
		s.log.Error("failed to create student", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to create student", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusCreated, student)
}
