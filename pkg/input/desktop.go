package input

import (
	"sync"

	"github.com/go-vgo/robotgo"

	"github.com/teslashibe/go-eyemouse/internal/log"
)

// Desktop drives the local OS pointer with robotgo
type Desktop struct {
	mu     sync.Mutex
	width  int
	height int
}

// NewDesktop queries the primary screen size
func NewDesktop() (*Desktop, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return nil, ErrNoDisplay
	}
	log.Info("desktop sink ready", "width", w, "height", h)
	return &Desktop{width: w, height: h}, nil
}

// MoveTo moves the pointer to absolute screen coordinates
func (d *Desktop) MoveTo(x, y int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	x, y, err := Clamp(x, y, d.width, d.height)
	if err != nil {
		return err
	}
	robotgo.Move(x, y)
	return nil
}

// Click presses the left button at the current position
func (d *Desktop) Click() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	robotgo.Click("left")
	return nil
}

// RightClick presses the right button at the current position
func (d *Desktop) RightClick() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	robotgo.Click("right")
	return nil
}

// ScreenSize returns the primary screen size in pixels
func (d *Desktop) ScreenSize() (int, int) {
	return d.width, d.height
}
