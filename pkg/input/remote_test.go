package input

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-eyemouse/pkg/protocol"
)

// fakeAgent records commands and can push messages back to the client
type fakeAgent struct {
	srv      *httptest.Server
	width    int
	height   int
	mu       sync.Mutex
	received []*protocol.Message
	conn     *websocket.Conn
	ready    chan struct{}
}

func newFakeAgent(t *testing.T, width, height int) *fakeAgent {
	t.Helper()
	a := &fakeAgent{width: width, height: height, ready: make(chan struct{})}
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/screen", func(w http.ResponseWriter, r *http.Request) {
		msg, _ := protocol.NewScreenMessage(a.width, a.height)
		w.Header().Set("Content-Type", "application/json")
		w.Write(msg.Data)
	})
	mux.HandleFunc("/ws/input", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		a.mu.Lock()
		a.conn = conn
		a.mu.Unlock()
		close(a.ready)

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			msg, err := protocol.ParseMessage(data)
			if err != nil {
				continue
			}
			a.mu.Lock()
			a.received = append(a.received, msg)
			a.mu.Unlock()

			if msg.Type == protocol.TypePing {
				ping, _ := msg.GetPingData()
				pong, _ := protocol.NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli())
				b, _ := pong.Bytes()
				a.mu.Lock()
				conn.WriteMessage(websocket.TextMessage, b)
				a.mu.Unlock()
			}
		}
	})

	a.srv = httptest.NewServer(mux)
	t.Cleanup(a.srv.Close)
	return a
}

func (a *fakeAgent) addr() string {
	return strings.TrimPrefix(a.srv.URL, "http://")
}

func (a *fakeAgent) push(t *testing.T, msg *protocol.Message) {
	t.Helper()
	<-a.ready
	b, _ := msg.Bytes()
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("push: %v", err)
	}
}

func (a *fakeAgent) waitFor(t *testing.T, n int) []*protocol.Message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		a.mu.Lock()
		if len(a.received) >= n {
			out := append([]*protocol.Message(nil), a.received...)
			a.mu.Unlock()
			return out
		}
		a.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timeout waiting for %d messages", n)
	return nil
}

func eventually(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timeout waiting for %s", what)
}

func TestRemote_SendsCommands(t *testing.T) {
	agent := newFakeAgent(t, 2560, 1440)

	r, err := DialRemote(context.Background(), agent.addr())
	if err != nil {
		t.Fatalf("DialRemote: %v", err)
	}
	defer r.Close()

	if w, h := r.ScreenSize(); w != 2560 || h != 1440 {
		t.Errorf("ScreenSize = %dx%d, want 2560x1440", w, h)
	}

	if err := r.MoveTo(100, 200); err != nil {
		t.Fatalf("MoveTo: %v", err)
	}
	if err := r.Click(); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if err := r.RightClick(); err != nil {
		t.Fatalf("RightClick: %v", err)
	}

	msgs := agent.waitFor(t, 3)
	want := []protocol.MessageType{protocol.TypeMove, protocol.TypeClick, protocol.TypeRightClick}
	for i, typ := range want {
		if msgs[i].Type != typ {
			t.Errorf("Message %d type = %v, want %v", i, msgs[i].Type, typ)
		}
	}

	move, err := msgs[0].GetMoveCommand()
	if err != nil {
		t.Fatalf("GetMoveCommand: %v", err)
	}
	if move.X != 100 || move.Y != 200 || move.ID == "" {
		t.Errorf("MoveCommand = %+v", move)
	}
}

func TestRemote_AgentMessages(t *testing.T) {
	agent := newFakeAgent(t, 1920, 1080)

	r, err := DialRemote(context.Background(), agent.addr())
	if err != nil {
		t.Fatalf("DialRemote: %v", err)
	}
	defer r.Close()

	screen, _ := protocol.NewScreenMessage(1280, 800)
	agent.push(t, screen)
	eventually(t, func() bool {
		w, h := r.ScreenSize()
		return w == 1280 && h == 800
	}, "screen update")

	failure, _ := protocol.NewErrorMessage("m-1", errors.New("out of bounds"))
	agent.push(t, failure)
	eventually(t, func() bool { return r.Failures() == 1 }, "failure count")

	if err := r.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	agent.waitFor(t, 1)
}

func TestRemote_Close(t *testing.T) {
	agent := newFakeAgent(t, 1920, 1080)

	r, err := DialRemote(context.Background(), agent.addr())
	if err != nil {
		t.Fatalf("DialRemote: %v", err)
	}

	if err := r.Close(); err != nil {
		t.Logf("Close: %v", err)
	}
	if err := r.MoveTo(1, 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed after Close, got %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Second Close should be a no-op, got %v", err)
	}
}

func TestDialRemote_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := DialRemote(ctx, "127.0.0.1:1"); err == nil {
		t.Error("Expected error dialing a closed port")
	}
}

func TestDialRemote_NoDisplay(t *testing.T) {
	agent := newFakeAgent(t, 0, 0)
	if _, err := DialRemote(context.Background(), agent.addr()); !errors.Is(err, ErrNoDisplay) {
		t.Errorf("Expected ErrNoDisplay, got %v", err)
	}
}
