// Package hub fans dashboard updates out to websocket viewers
// through one goroutine that owns the viewer set.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-eyemouse/internal/log"
)

// Message is one dashboard update: JSON telemetry or a binary JPEG frame
type Message struct {
	Data   []byte
	Binary bool
}

// Hub broadcasts one stream (events, status or camera) to its viewers
type Hub struct {
	name   string
	logger *slog.Logger

	viewers    map[*viewer]struct{}
	broadcast  chan Message
	register   chan *viewer
	unregister chan *viewer

	// Closed when Run returns
	done chan struct{}

	// Guards viewers for Viewers()
	mu sync.RWMutex

	// Replay the last broadcast to new viewers
	replay bool
	last   *Message

	running atomic.Bool
	dropped atomic.Uint64
}

// New creates a new Hub
func New(name string) *Hub {
	return &Hub{
		name:       name,
		logger:     log.Component("hub").With("hub", name),
		viewers:    make(map[*viewer]struct{}),
		broadcast:  make(chan Message, 256),
		register:   make(chan *viewer),
		unregister: make(chan *viewer),
		done:       make(chan struct{}),
	}
}

// NewReplaying creates a Hub that greets new viewers with the last broadcast,
// so a freshly opened dashboard shows status and the camera at once.
func NewReplaying(name string) *Hub {
	h := New(name)
	h.replay = true
	return h
}

// Run starts the hub's main loop until ctx is canceled.
// This should be called in a goroutine, once.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for v := range h.viewers {
				close(v.out)
				delete(h.viewers, v)
			}
			h.mu.Unlock()
			return

		case v := <-h.register:
			h.mu.Lock()
			h.viewers[v] = struct{}{}
			count := len(h.viewers)
			if h.replay && h.last != nil {
				v.out <- *h.last
			}
			h.mu.Unlock()
			h.logger.Debug("viewer joined", "viewers", count)

		case v := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.viewers[v]; ok {
				delete(h.viewers, v)
				close(v.out)
			}
			count := len(h.viewers)
			h.mu.Unlock()
			h.logger.Debug("viewer left", "viewers", count)

		case msg := <-h.broadcast:
			h.mu.Lock()
			if h.replay {
				h.last = &msg
			}
			for v := range h.viewers {
				select {
				case v.out <- msg:
				default:
					close(v.out)
					delete(h.viewers, v)
					h.logger.Warn("dropped lagging viewer")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues msg for every viewer without blocking the caller
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
		h.logger.Debug("broadcast channel full, dropping message")
	}
}

// BroadcastJSON encodes v and broadcasts it as a text frame
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(Message{Data: data})
	return nil
}

// BroadcastBinary broadcasts a JPEG preview frame
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(Message{Data: data, Binary: true})
}

// Viewers returns the number of attached viewers
func (h *Hub) Viewers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// Dropped returns how many broadcasts were dropped because the hub was backed up
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// IsRunning returns whether the hub is running
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}

// Name returns the hub name
func (h *Hub) Name() string {
	return h.name
}
