package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-eyemouse/pkg/hub"
)

// handleIndex serves the embedded dashboard page
func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html")
	return c.Send(indexHTML)
}

// handleStatus returns the current session stats
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.source.Stats())
}

// handleConfig returns the active tracking config
func (s *Server) handleConfig(c *fiber.Ctx) error {
	cfg := s.source.Config()
	return c.JSON(fiber.Map{
		"ear_threshold":     cfg.EARThreshold,
		"blink_frames":      cfg.BlinkFrames,
		"edge_ratio":        cfg.EdgeRatio,
		"dwell_threshold":   cfg.DwellThreshold.String(),
		"movement_deadband": cfg.MovementDeadband,
		"camera_width":      cfg.CameraWidth,
		"camera_height":     cfg.CameraHeight,
		"frame_skip":        cfg.FrameSkip,
	})
}

// handleEvents returns recent events, optionally only the last ?limit=n
func (s *Server) handleEvents(c *fiber.Ctx) error {
	events := s.RecentEvents()
	if limit := c.QueryInt("limit", 0); limit > 0 && limit < len(events) {
		events = events[len(events)-limit:]
	}
	return c.JSON(fiber.Map{
		"events": events,
		"count":  len(events),
	})
}

// serveHub attaches a websocket connection to h until it closes
func (s *Server) serveHub(h *hub.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		s.logger.Debug("dashboard viewer connected", "hub", h.Name())
		h.Serve(c)
	}
}
