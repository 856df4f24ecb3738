package preview

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-eyemouse/pkg/camera"
	"github.com/teslashibe/go-eyemouse/pkg/landmarks"
	"github.com/teslashibe/go-eyemouse/pkg/tracking"
)

// Window shows the annotated camera feed. It implements tracking.Display.
type Window struct {
	window *gocv.Window
	name   string
	fps    fpsCounter
}

var _ tracking.Display = (*Window)(nil)

// NewWindow creates a new preview window
func NewWindow(name string) *Window {
	window := gocv.NewWindow(name)
	// Force window to appear on macOS
	window.ResizeWindow(640, 480)
	window.MoveWindow(100, 100)
	return &Window{
		window: window,
		name:   name,
	}
}

// Show draws the overlay on a copy of the frame and displays it
func (w *Window) Show(frame tracking.Frame, faces []landmarks.Face) {
	cf, ok := frame.(*camera.Frame)
	if !ok {
		return
	}

	img := cf.Color.Clone()
	defer img.Close()

	Draw(&img, faces)
	drawFPS(&img, w.fps.tick(time.Now()))
	w.window.IMShow(img)
}

// PollKey pumps the window event loop and returns the pressed key or -1
func (w *Window) PollKey() int {
	return w.window.WaitKey(1)
}

// FPS returns current frames per second
func (w *Window) FPS() float64 {
	return w.fps.fps
}

// Close closes the window
func (w *Window) Close() error {
	if w.window != nil {
		return w.window.Close()
	}
	return nil
}
