package tracking

import (
	"math"

	"github.com/teslashibe/go-eyemouse/pkg/geometry"
)

// ScreenPoint is a pointer position in screen pixels
type ScreenPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Mapper converts camera-space eye positions into screen coordinates,
// holding the pointer still until it would move past the deadband
type Mapper struct {
	cameraW, cameraH float64
	screenW, screenH float64
	deadband         int

	last ScreenPoint
}

// NewMapper creates a mapper for the configured capture size and the given screen
func NewMapper(config Config, screenW, screenH int) *Mapper {
	return &Mapper{
		cameraW:  float64(config.CameraWidth),
		cameraH:  float64(config.CameraHeight),
		screenW:  float64(screenW),
		screenH:  float64(screenH),
		deadband: config.MovementDeadband,
	}
}

// Project linearly maps a camera-space gaze point onto the screen
func (m *Mapper) Project(gaze geometry.Point) ScreenPoint {
	x := geometry.Interp(gaze.X, 0, m.cameraW, 0, m.screenW)
	y := geometry.Interp(gaze.Y, 0, m.cameraH, 0, m.screenH)
	return ScreenPoint{X: int(math.Floor(x)), Y: int(math.Floor(y))}
}

// Map projects the midpoint of both eye centers and applies the deadband.
// Returns the point to report and whether it differs from the previous one.
func (m *Mapper) Map(left, right geometry.EyeContour) (ScreenPoint, bool) {
	return m.Update(m.Project(geometry.GazePoint(left, right)))
}

// Update applies the deadband to an already projected point
func (m *Mapper) Update(p ScreenPoint) (ScreenPoint, bool) {
	if abs(p.X-m.last.X) > m.deadband || abs(p.Y-m.last.Y) > m.deadband {
		m.last = p
		return p, true
	}
	return m.last, false
}

// Last returns the most recently reported point
func (m *Mapper) Last() ScreenPoint {
	return m.last
}

// SetLast sets the reference point for the deadband (for initialization)
func (m *Mapper) SetLast(p ScreenPoint) {
	m.last = p
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
