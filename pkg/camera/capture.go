package camera

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-eyemouse/pkg/tracking"
)

// Sentinel errors for capture.
var (
	// ErrClosed is returned when reading from a released camera.
	ErrClosed = errors.New("camera: closed")

	// ErrEmptyFrame is returned when the device delivers no image.
	ErrEmptyFrame = errors.New("camera: empty frame")
)

// Frame holds one captured image in color (for display) and grayscale.
type Frame struct {
	Color gocv.Mat
	Gray  gocv.Mat
}

// Close releases both images
func (f *Frame) Close() error {
	var errs []error
	if err := f.Color.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := f.Gray.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Width returns the frame width
func (f *Frame) Width() int {
	return f.Color.Cols()
}

// Height returns the frame height
func (f *Frame) Height() int {
	return f.Color.Rows()
}

// Capture manages webcam capture
type Capture struct {
	webcam *gocv.VideoCapture
	config Config
	width  int
	height int
	mu     sync.Mutex
}

// Open opens the configured device and requests its resolution
func Open(config Config) (*Capture, error) {
	if err := config.Err(); err != nil {
		return nil, err
	}

	webcam, err := gocv.OpenVideoCapture(config.Device)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", config.Device, err)
	}
	if !webcam.IsOpened() {
		webcam.Close()
		return nil, fmt.Errorf("failed to open camera %d", config.Device)
	}

	webcam.Set(gocv.VideoCaptureFrameWidth, float64(config.Width))
	webcam.Set(gocv.VideoCaptureFrameHeight, float64(config.Height))
	webcam.Set(gocv.VideoCaptureFPS, float64(config.Framerate))

	// Camera may not support requested resolution
	actualWidth := int(webcam.Get(gocv.VideoCaptureFrameWidth))
	actualHeight := int(webcam.Get(gocv.VideoCaptureFrameHeight))

	return &Capture{
		webcam: webcam,
		config: config,
		width:  actualWidth,
		height: actualHeight,
	}, nil
}

// Read blocks for the next frame, mirrors it and prepares the grayscale copy
func (c *Capture) Read() (tracking.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.webcam == nil {
		return nil, ErrClosed
	}

	raw := gocv.NewMat()
	defer raw.Close()
	if ok := c.webcam.Read(&raw); !ok {
		return nil, fmt.Errorf("camera %d: read failed", c.config.Device)
	}
	if raw.Empty() {
		return nil, ErrEmptyFrame
	}

	return Prepare(raw, c.config.Mirror), nil
}

// Prepare copies img into a new Frame, optionally mirrored, with a grayscale copy
func Prepare(img gocv.Mat, mirror bool) *Frame {
	frame := &Frame{Color: gocv.NewMat(), Gray: gocv.NewMat()}
	if mirror {
		gocv.Flip(img, &frame.Color, 1)
	} else {
		img.CopyTo(&frame.Color)
	}
	gocv.CvtColor(frame.Color, &frame.Gray, gocv.ColorBGRToGray)
	return frame
}

// Width returns the actual frame width
func (c *Capture) Width() int {
	return c.width
}

// Height returns the actual frame height
func (c *Capture) Height() int {
	return c.height
}

// Close releases the camera
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.webcam != nil {
		err := c.webcam.Close()
		c.webcam = nil
		return err
	}
	return nil
}
