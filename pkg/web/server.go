// Package web serves a live telemetry dashboard for a tracking session
package web

import (
	"context"
	_ "embed"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-eyemouse/internal/log"
	"github.com/teslashibe/go-eyemouse/pkg/hub"
	"github.com/teslashibe/go-eyemouse/pkg/tracking"
)

//go:embed index.html
var indexHTML []byte

// maxEvents is how many recent events /api/events keeps
const maxEvents = 200

// DefaultStatusInterval is how often /ws/status pushes a stats snapshot
const DefaultStatusInterval = 500 * time.Millisecond

// Source is what the dashboard reports on (*tracking.Tracker satisfies it)
type Source interface {
	Stats() tracking.Stats
	Config() tracking.Config
}

// Server is the dashboard server. It is a tracking.Observer.
type Server struct {
	app    *fiber.App
	addr   string
	source Source
	logger *slog.Logger

	// Recent events (last maxEvents)
	events   []tracking.Event
	eventsMu sync.RWMutex

	// Hubs for websocket broadcast
	eventsHub *hub.Hub
	statusHub *hub.Hub
	cameraHub *hub.Hub

	statusInterval time.Duration
}

var _ tracking.Observer = (*Server)(nil)

// NewServer creates a dashboard for source listening on addr (e.g. ":8090")
func NewServer(addr string, source Source) *Server {
	s := &Server{
		addr:           addr,
		source:         source,
		logger:         log.Component("web"),
		events:         make([]tracking.Event, 0, maxEvents),
		eventsHub:      hub.New("events"),
		statusHub:      hub.NewReplaying("status"),
		cameraHub:      hub.NewReplaying("camera"),
		statusInterval: DefaultStatusInterval,
	}

	app := fiber.New(fiber.Config{
		AppName:               "eyemouse dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	app.Get("/", s.handleIndex)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/config", s.handleConfig)
	api.Get("/events", s.handleEvents)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/events", websocket.New(s.serveHub(s.eventsHub)))
	app.Get("/ws/status", websocket.New(s.serveHub(s.statusHub)))
	app.Get("/ws/camera", websocket.New(s.serveHub(s.cameraHub)))

	s.app = app
	return s
}

// SetStatusInterval changes how often stats are pushed (call before Start)
func (s *Server) SetStatusInterval(d time.Duration) {
	if d > 0 {
		s.statusInterval = d
	}
}

// App returns the underlying Fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Start runs the hubs and serves until ctx is canceled
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("web dashboard listening", "addr", s.addr)

	go s.eventsHub.Run(ctx)
	go s.statusHub.Run(ctx)
	go s.cameraHub.Run(ctx)
	go s.pushStatus(ctx)

	go func() {
		<-ctx.Done()
		s.app.Shutdown()
	}()

	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Warn("web server error", "error", err)
		}
	}()
}

// OnEvent records an event and broadcasts it. It never blocks the tracker.
func (s *Server) OnEvent(ev tracking.Event) {
	s.eventsMu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > maxEvents {
		s.events = s.events[1:]
	}
	s.eventsMu.Unlock()

	if err := s.eventsHub.BroadcastJSON(ev); err != nil {
		s.logger.Debug("event encode failed", "error", err)
	}
}

// SendCameraFrame sends a JPEG preview frame to all camera clients
func (s *Server) SendCameraFrame(jpegData []byte) {
	s.cameraHub.BroadcastBinary(jpegData)
}

// RecentEvents returns a copy of the buffered events, oldest first
func (s *Server) RecentEvents() []tracking.Event {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	out := make([]tracking.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Server) pushStatus(ctx context.Context) {
	ticker := time.NewTicker(s.statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.statusHub.Viewers() == 0 {
				continue
			}
			s.statusHub.BroadcastJSON(s.source.Stats())
		}
	}
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
