package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campushq/beacon/internal/sqlite"
	"github.com/campushq/beacon/pkg/models"
)

const (
	userLocalKey  = "user"
	tokenLocalKey = "token"
)

// requireAuth resolves the bearer token to a user and stores it in the
// request locals. Requests without a valid token are rejected.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return SendErrorWithType(c, fiber.StatusUnauthorized, "Missing bearer token", models.AuthErrorType)
	}

	user, err := s.sqlite.GetUserBySessionToken(c.Context(), token)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return SendErrorWithType(c, fiber.StatusUnauthorized, "Invalid session token", models.AuthErrorType)
		}
		s.log.Error("failed to resolve session token", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Authentication failed", models.GeneralErrorType)
	}
	if user.Status != models.UserStatusActive {
		return SendErrorWithType(c, fiber.StatusUnauthorized, "User is inactive", models.AuthErrorType)
	}

	// Best effort; a failed touch never fails the request.
	if err := s.sqlite.TouchSessionToken(c.Context(), token); err != nil {
		s.log.Warn("failed to touch session token", "error", err)
	}

	c.Locals(userLocalKey, user)
	c.Locals(tokenLocalKey, token)
	return c.Next()
}

// requireRole gates a route to the given roles. It must run after
// requireAuth.
func (s *Server) requireRole(roles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		if user == nil {
			return SendErrorWithType(c, fiber.StatusUnauthorized, "Authentication required", models.AuthErrorType)
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return SendErrorWithType(c, fiber.StatusForbidden, "Insufficient role", models.ForbiddenErrorType)
	}
}

// currentUser returns the authenticated user set by requireAuth, or nil.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalKey).(*models.User)
	return user
}
