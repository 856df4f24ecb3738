package input

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-eyemouse/internal/httpc"
	"github.com/teslashibe/go-eyemouse/internal/log"
	"github.com/teslashibe/go-eyemouse/pkg/protocol"
)

const (
	remoteHandshakeTimeout = 10 * time.Second
	remoteWriteTimeout     = 2 * time.Second
)

// Remote forwards commands to an eyemouse-agent over WebSocket.
// Command failures on the agent side arrive asynchronously and are counted,
// not returned from MoveTo/Click/RightClick.
type Remote struct {
	addr   string
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex

	mu     sync.RWMutex
	width  int
	height int

	failures atomic.Uint64
	latency  atomic.Int64 // last ping round trip in ms
	closed   atomic.Bool
	done     chan struct{}
}

// DialRemote fetches the agent's screen size and opens the command socket.
// addr is host:port of the agent.
func DialRemote(ctx context.Context, addr string) (*Remote, error) {
	var screen protocol.ScreenData
	if err := httpc.GetJSON(ctx, "http://"+addr+"/api/screen", &screen); err != nil {
		return nil, fmt.Errorf("agent screen size: %w", err)
	}
	if screen.Width <= 0 || screen.Height <= 0 {
		return nil, fmt.Errorf("%w: agent reported %dx%d", ErrNoDisplay, screen.Width, screen.Height)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: remoteHandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, "ws://"+addr+"/ws/input", nil)
	if err != nil {
		return nil, fmt.Errorf("agent connect failed: %w", err)
	}

	r := &Remote{
		addr:   addr,
		conn:   conn,
		logger: log.Component("input").With("sink", KindRemote, "agent", addr),
		width:  screen.Width,
		height: screen.Height,
		done:   make(chan struct{}),
	}
	go r.readLoop()

	r.logger.Info("remote sink connected", "width", screen.Width, "height", screen.Height)
	return r, nil
}

func (r *Remote) MoveTo(x, y int) error {
	return r.build(protocol.NewMoveMessage("", x, y))
}

func (r *Remote) Click() error {
	return r.build(protocol.NewClickMessage(""))
}

func (r *Remote) RightClick() error {
	return r.build(protocol.NewRightClickMessage(""))
}

// ScreenSize returns the agent's screen size
func (r *Remote) ScreenSize() (int, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.width, r.height
}

// Ping asks the agent for a pong; the round trip shows up in Latency
func (r *Remote) Ping() error {
	return r.build(protocol.NewPingMessage(""))
}

// Latency returns the last measured ping round trip
func (r *Remote) Latency() time.Duration {
	return time.Duration(r.latency.Load()) * time.Millisecond
}

// Failures returns how many commands the agent reported as failed
func (r *Remote) Failures() uint64 {
	return r.failures.Load()
}

// Done is closed when the connection to the agent ends
func (r *Remote) Done() <-chan struct{} {
	return r.done
}

func (r *Remote) build(msg *protocol.Message, err error) error {
	if err != nil {
		return err
	}
	return r.send(msg)
}

func (r *Remote) send(msg *protocol.Message) error {
	if r.closed.Load() {
		return ErrClosed
	}

	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.conn.SetWriteDeadline(time.Now().Add(remoteWriteTimeout))
	return r.conn.WriteMessage(websocket.TextMessage, data)
}

func (r *Remote) readLoop() {
	defer close(r.done)

	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			if !r.closed.Swap(true) {
				r.logger.Warn("agent connection lost", "error", err)
			}
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			r.logger.Debug("bad message from agent", "error", err)
			continue
		}
		r.handle(msg)
	}
}

func (r *Remote) handle(msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeScreen:
		screen, err := msg.GetScreenData()
		if err != nil || screen.Width <= 0 || screen.Height <= 0 {
			return
		}
		r.mu.Lock()
		r.width, r.height = screen.Width, screen.Height
		r.mu.Unlock()

	case protocol.TypeError:
		r.failures.Add(1)
		if e, err := msg.GetErrorData(); err == nil {
			r.logger.Warn("agent rejected command", "id", e.ID, "error", e.Error)
		}

	case protocol.TypePing:
		ping, err := msg.GetPingData()
		if err != nil {
			return
		}
		pong, err := protocol.NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli())
		if err == nil {
			r.send(pong)
		}

	case protocol.TypePong:
		if pong, err := msg.GetPongData(); err == nil {
			r.latency.Store(time.Now().UnixMilli() - pong.PingTS)
		}
	}
}

// Close sends a close frame and waits briefly for the agent to hang up
func (r *Remote) Close() error {
	if r.closed.Swap(true) {
		return nil
	}

	r.writeMu.Lock()
	r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(remoteWriteTimeout))
	r.writeMu.Unlock()

	select {
	case <-r.done:
	case <-time.After(time.Second):
	}
	return r.conn.Close()
}
