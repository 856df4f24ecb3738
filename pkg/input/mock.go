package input

import (
	"image"
	"sync"
)

// Call is one recorded sink command
type Call struct {
	Kind string // "move", "click" or "right_click"
	X, Y int    // Set for moves
}

// Mock records every command for tests
type Mock struct {
	mu     sync.Mutex
	calls  []Call
	width  int
	height int

	// Err, when set, is returned from every command after recording it
	Err error
}

// NewMock creates a recording sink with the given screen size
func NewMock(width, height int) *Mock {
	return &Mock{width: width, height: height}
}

func (m *Mock) record(c Call) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
	return m.Err
}

func (m *Mock) MoveTo(x, y int) error { return m.record(Call{Kind: "move", X: x, Y: y}) }
func (m *Mock) Click() error          { return m.record(Call{Kind: "click"}) }
func (m *Mock) RightClick() error     { return m.record(Call{Kind: "right_click"}) }

func (m *Mock) ScreenSize() (int, int) {
	return m.width, m.height
}

// Calls returns a copy of the recorded commands
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Count returns how many commands of kind were recorded
func (m *Mock) Count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Last returns the last move target, or false if there were no moves
func (m *Mock) Last() (image.Point, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.calls) - 1; i >= 0; i-- {
		if m.calls[i].Kind == "move" {
			return image.Pt(m.calls[i].X, m.calls[i].Y), true
		}
	}
	return image.Point{}, false
}
