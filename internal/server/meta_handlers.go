package server

import (
	"github.com/gofiber/fiber/v2"
)

// MetaResponse represents the server metadata response.
type MetaResponse struct {
	Version           string `json:"version"`
	HTTPServerTimeout string `json:"http_server_timeout"`
	SweepInterval     string `json:"sweep_interval"`
}

// handleGetMeta returns server metadata.
// URL: GET /api/v1/meta
// Public endpoint - no authentication required
func (s *Server) handleGetMeta(c *fiber.Ctx) error {
	return SendSuccess(c, fiber.StatusOK, MetaResponse{
		Version:           s.version,
		HTTPServerTimeout: s.config.Server.HTTPServerTimeout.String(),
		SweepInterval:     s.config.Alerts.SweepInterval.String(),
	})
}

// handleHealth reports liveness.
// URL: GET /api/v1/health
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"status": "ok"})
}
