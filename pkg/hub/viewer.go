package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

// Dashboard viewers only receive. A viewer that cannot keep up with the
// camera stream is dropped rather than slowing the other viewers down.
const (
	writeTimeout = 5 * time.Second
	idleTimeout  = 30 * time.Second
	pingInterval = idleTimeout / 2

	// Anything a browser sends beyond a close frame is ignored
	maxInbound = 512

	// About a second and a half of camera frames at the default stream rate
	viewerQueue = 16
)

// viewer is one dashboard websocket attached to a hub
type viewer struct {
	hub  *Hub
	conn *websocket.Conn
	out  chan Message
}

// Serve attaches conn to the hub and blocks until the viewer disconnects
// or the hub stops. Call it from the websocket handler.
func (h *Hub) Serve(conn *websocket.Conn) {
	v := &viewer{hub: h, conn: conn, out: make(chan Message, viewerQueue)}

	select {
	case h.register <- v:
	case <-h.done:
		conn.Close()
		return
	}

	go v.forward()
	v.drain()
}

// drain discards inbound frames so pongs and close frames are processed
func (v *viewer) drain() {
	defer func() {
		select {
		case v.hub.unregister <- v:
		case <-v.hub.done:
		}
		v.conn.Close()
	}()

	v.conn.SetReadLimit(maxInbound)
	v.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// forward owns all writes: queued updates plus keepalive pings
func (v *viewer) forward() {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		v.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-v.out:
			v.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			kind := websocket.TextMessage
			if msg.Binary {
				kind = websocket.BinaryMessage
			}
			if err := v.conn.WriteMessage(kind, msg.Data); err != nil {
				return
			}

		case <-ping.C:
			v.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
