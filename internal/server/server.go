// Package server exposes the HTTP API over Fiber. Handlers bind and
// validate requests, call into core, and map core sentinels onto the
// response envelope.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/campushq/beacon/internal/config"
	"github.com/campushq/beacon/internal/sqlite"
	"github.com/campushq/beacon/pkg/models"
)

// Server is the HTTP API server.
type Server struct {
	app     *fiber.App
	config  *config.Config
	sqlite  *sqlite.DB
	log     *slog.Logger
	version string
}

// ServerOptions contains dependencies for creating a Server.
type ServerOptions struct {
	Config  *config.Config
	SQLite  *sqlite.DB
	Logger  *slog.Logger
	Version string
}

// New creates a Server with all routes registered.
func New(opts ServerOptions) *Server {
	s := &Server{
		config:  opts.Config,
		sqlite:  opts.SQLite,
		log:     opts.Logger.With("component", "server"),
		version: opts.Version,
	}

	s.app = fiber.New(fiber.Config{
		ReadTimeout:           opts.Config.Server.HTTPServerTimeout,
		WriteTimeout:          opts.Config.Server.HTTPServerTimeout,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fiberErr, ok := err.(*fiber.Error); ok {
				code = fiberErr.Code
			}
			return SendError(c, code, err.Error())
		},
	})
	s.app.Use(recover.New())

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api/v1")

	// Public endpoints.
	api.Get("/meta", s.handleGetMeta)
	api.Get("/health", s.handleHealth)
	api.Get("/metrics", s.handleMetrics)

	// Everything else requires a session.
	api.Use(s.requireAuth)

	api.Post("/auth/logout", s.handleLogout)

	alerts := api.Group("/alerts")
	alerts.Get("/mine", s.handleListMyAlerts)
	alerts.Post("/", s.requireRole(models.UserRoleTeacher, models.UserRoleAdmin, models.UserRoleMentor), s.handleCreateAlert)
	alerts.Post("/from-template", s.requireRole(models.UserRoleTeacher, models.UserRoleAdmin), s.handleCreateAlertFromTemplate)
	alerts.Post("/emergency", s.requireRole(models.UserRoleAdmin), s.handleCreateEmergencyAlert)
	alerts.Post("/financial", s.requireRole(models.UserRoleAdmin), s.handleCreateFinancialAlert)
	alerts.Post("/parent-meeting", s.requireRole(models.UserRoleTeacher), s.handleCreateParentMeetingAlert)
	alerts.Post("/academic", s.requireRole(models.UserRoleTeacher, models.UserRoleAdmin, models.UserRoleMentor), s.handleCreateAcademicAlert)
	alerts.Post("/expire-due", s.requireRole(models.UserRoleAdmin), s.handleExpireDueAlerts)
	alerts.Get("/:alertID", s.handleGetAlert)
	alerts.Get("/:alertID/recipients", s.requireRole(models.UserRoleAdmin), s.handleListAlertRecipients)
	alerts.Post("/:alertID/acknowledge", s.handleAcknowledgeAlert)
	alerts.Post("/:alertID/resolve", s.requireRole(models.UserRoleAdmin), s.handleResolveAlert)

	templates := api.Group("/templates")
	templates.Get("/", s.handleListTemplates)
	templates.Post("/", s.requireRole(models.UserRoleAdmin), s.handleCreateTemplate)

	transport := api.Group("/transport")
	transport.Post("/events", s.requireRole(models.UserRoleTeacher, models.UserRoleAdmin), s.handleRecordTransportEvent)

	users := api.Group("/users", s.requireRole(models.UserRoleAdmin))
	users.Get("/", s.handleListUsers)
	users.Post("/", s.handleCreateUser)
	users.Post("/:userID/tokens", s.handleIssueSessionToken)
	users.Get("/:userID/tokens", s.handleListSessionTokens)

	students := api.Group("/students")
	students.Get("/me", s.handleGetMyStudent)
	students.Get("/", s.requireRole(models.UserRoleAdmin, models.UserRoleTeacher), s.handleListStudents)
	students.Post("/", s.requireRole(models.UserRoleAdmin), s.handleCreateStudent)
	students.Get("/:studentID/transport-events", s.requireRole(models.UserRoleAdmin, models.UserRoleTeacher), s.handleListTransportEvents)
}

// handleMetrics exposes Prometheus-format metrics.
func (s *Server) handleMetrics(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	metrics.WritePrometheus(c.Context().Response.BodyWriter(), true)
	return nil
}

// Start begins listening for HTTP requests. It blocks until the server
// stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.log.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
