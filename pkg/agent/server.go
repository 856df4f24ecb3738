// Package agent accepts pointer commands from remote trackers over WebSocket
// and applies them to a local input sink.
package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/teslashibe/go-eyemouse/internal/log"
	"github.com/teslashibe/go-eyemouse/pkg/input"
	"github.com/teslashibe/go-eyemouse/pkg/protocol"
	"github.com/teslashibe/go-eyemouse/pkg/tracking"
)

// ErrUnknownCommand is reported back for message types the agent does not apply
var ErrUnknownCommand = errors.New("agent: unknown command")

// Client represents a connected tracker
type Client struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time

	mu sync.Mutex
}

// Send sends a message to the tracker
func (c *Client) Send(msg *protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// Server applies commands from connected trackers to one sink
type Server struct {
	mu      sync.RWMutex
	clients map[string]*Client

	sink   tracking.InputSink
	sinkMu sync.Mutex // Commands from different trackers never interleave
	logger *slog.Logger

	// Stats
	commandsReceived atomic.Uint64
	commandsApplied  atomic.Uint64
	commandsFailed   atomic.Uint64
	messagesSent     atomic.Uint64
}

// New creates an agent that drives sink
func New(sink tracking.InputSink) *Server {
	return &Server{
		clients: make(map[string]*Client),
		sink:    sink,
		logger:  log.Component("agent"),
	}
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (s *Server) RegisterRoutes(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/input", websocket.New(s.handleClient))
	app.Get("/ws/input/:id", websocket.New(s.handleClient))
}

// handleClient handles one tracker connection
func (s *Server) handleClient(c *websocket.Conn) {
	clientID := c.Params("id")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	client := &Client{
		ID:        clientID,
		Conn:      c,
		Connected: time.Now(),
		LastSeen:  time.Now(),
	}

	s.mu.Lock()
	s.clients[clientID] = client
	count := len(s.clients)
	s.mu.Unlock()

	s.logger.Info("tracker connected", "client", clientID, "total", count)

	defer func() {
		s.mu.Lock()
		delete(s.clients, clientID)
		count := len(s.clients)
		s.mu.Unlock()

		s.logger.Info("tracker disconnected", "client", clientID, "total", count)
	}()

	w, h := s.sink.ScreenSize()
	if msg, err := protocol.NewScreenMessage(w, h); err == nil {
		s.send(client, msg)
	}

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			s.logger.Debug("tracker read error", "client", clientID, "error", err)
			return
		}

		client.mu.Lock()
		client.LastSeen = time.Now()
		client.mu.Unlock()

		s.handleMessage(client, data)
	}
}

// handleMessage applies one command and reports failures back to the sender
func (s *Server) handleMessage(client *Client, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		s.logger.Debug("parse error", "client", client.ID, "error", err)
		return
	}

	switch msg.Type {
	case protocol.TypePing:
		ping, err := msg.GetPingData()
		if err != nil {
			return
		}
		if pong, err := protocol.NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli()); err == nil {
			s.send(client, pong)
		}
		return

	case protocol.TypePong:
		return
	}

	s.commandsReceived.Add(1)
	id, err := s.apply(msg)
	if err != nil {
		s.commandsFailed.Add(1)
		s.logger.Warn("command failed", "client", client.ID, "type", msg.Type, "id", id, "error", err)
		if reply, e := protocol.NewErrorMessage(id, err); e == nil {
			s.send(client, reply)
		}
		return
	}
	s.commandsApplied.Add(1)
}

// apply runs a pointer command on the sink and returns its id
func (s *Server) apply(msg *protocol.Message) (string, error) {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()

	switch msg.Type {
	case protocol.TypeMove:
		cmd, err := msg.GetMoveCommand()
		if err != nil {
			return "", err
		}
		w, h := s.sink.ScreenSize()
		x, y, err := input.Clamp(cmd.X, cmd.Y, w, h)
		if err != nil {
			return cmd.ID, err
		}
		return cmd.ID, s.sink.MoveTo(x, y)

	case protocol.TypeClick:
		cmd, err := msg.GetClickCommand()
		if err != nil {
			return "", err
		}
		return cmd.ID, s.sink.Click()

	case protocol.TypeRightClick:
		cmd, err := msg.GetClickCommand()
		if err != nil {
			return "", err
		}
		return cmd.ID, s.sink.RightClick()

	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, msg.Type)
	}
}

func (s *Server) send(client *Client, msg *protocol.Message) {
	s.messagesSent.Add(1)
	if err := client.Send(msg); err != nil {
		s.logger.Debug("send error", "client", client.ID, "error", err)
	}
}

// ClientCount returns the number of connected trackers
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Stats contains agent statistics
type Stats struct {
	ClientCount      int    `json:"client_count"`
	CommandsReceived uint64 `json:"commands_received"`
	CommandsApplied  uint64 `json:"commands_applied"`
	CommandsFailed   uint64 `json:"commands_failed"`
	MessagesSent     uint64 `json:"messages_sent"`
}

// GetStats returns agent statistics
func (s *Server) GetStats() Stats {
	return Stats{
		ClientCount:      s.ClientCount(),
		CommandsReceived: s.commandsReceived.Load(),
		CommandsApplied:  s.commandsApplied.Load(),
		CommandsFailed:   s.commandsFailed.Load(),
		MessagesSent:     s.messagesSent.Load(),
	}
}

// ClientInfo contains info about a connected tracker
type ClientInfo struct {
	ID        string    `json:"id"`
	Connected time.Time `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
}

// GetClientInfos returns info about all connected trackers
func (s *Server) GetClientInfos() []ClientInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]ClientInfo, 0, len(s.clients))
	for _, c := range s.clients {
		c.mu.Lock()
		infos = append(infos, ClientInfo{
			ID:        c.ID,
			Connected: c.Connected,
			LastSeen:  c.LastSeen,
		})
		c.mu.Unlock()
	}
	return infos
}

// RegisterAPIRoutes registers the agent's REST routes
func (s *Server) RegisterAPIRoutes(api fiber.Router) {
	api.Get("/screen", func(c *fiber.Ctx) error {
		w, h := s.sink.ScreenSize()
		return c.JSON(protocol.ScreenData{Width: w, Height: h})
	})

	api.Get("/clients", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"clients": s.GetClientInfos(),
			"count":   s.ClientCount(),
		})
	})

	api.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(s.GetStats())
	})
}

// NewApp builds a Fiber app with all agent routes plus /health and /metrics.
// Extra middleware runs before every route.
func (s *Server) NewApp(middleware ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "eyemouse-agent",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	for _, m := range middleware {
		app.Use(m)
	}

	s.RegisterRoutes(app)
	s.RegisterAPIRoutes(app.Group("/api"))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"clients": s.ClientCount(),
		})
	})

	app.Get("/metrics", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/plain; version=0.0.4")
		return c.SendString(s.metrics())
	})
	return app
}

// metrics renders the stats in Prometheus text format
func (s *Server) metrics() string {
	stats := s.GetStats()
	return fmt.Sprintf(`# HELP eyemouse_agent_clients Connected tracker count
# TYPE eyemouse_agent_clients gauge
eyemouse_agent_clients %d

# HELP eyemouse_agent_commands_received Total commands received
# TYPE eyemouse_agent_commands_received counter
eyemouse_agent_commands_received %d

# HELP eyemouse_agent_commands_applied Total commands applied to the sink
# TYPE eyemouse_agent_commands_applied counter
eyemouse_agent_commands_applied %d

# HELP eyemouse_agent_commands_failed Total commands the sink rejected
# TYPE eyemouse_agent_commands_failed counter
eyemouse_agent_commands_failed %d

# HELP eyemouse_agent_messages_sent Total messages sent to trackers
# TYPE eyemouse_agent_messages_sent counter
eyemouse_agent_messages_sent %d
`, stats.ClientCount, stats.CommandsReceived, stats.CommandsApplied, stats.CommandsFailed, stats.MessagesSent)
}
