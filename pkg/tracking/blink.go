package tracking

import "github.com/teslashibe/go-eyemouse/pkg/geometry"

// Blink turns sustained low eye aspect ratios into click triggers.
//
// The counter is not reset after firing: while the eyes stay closed every
// further detection cycle fires again.
type Blink struct {
	threshold float64
	frames    int

	counter int
}

// NewBlink creates a blink detector
func NewBlink(config Config) *Blink {
	return &Blink{
		threshold: config.EARThreshold,
		frames:    config.BlinkFrames,
	}
}

// Update feeds one averaged EAR sample and reports whether to click
func (b *Blink) Update(ear float64) bool {
	if ear >= b.threshold {
		b.counter = 0
		return false
	}
	b.counter++
	return b.counter >= b.frames
}

// Counter returns the number of consecutive closed cycles
func (b *Blink) Counter() int {
	return b.counter
}

// AverageEAR averages the aspect ratio of both eyes.
// A degenerate eye is left out; ok is false when neither eye is usable.
func AverageEAR(left, right geometry.EyeContour) (ear float64, ok bool) {
	var sum float64
	var n int
	for _, c := range [2]geometry.EyeContour{left, right} {
		r, err := geometry.EyeAspectRatio(c)
		if err != nil {
			continue
		}
		sum += r
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
