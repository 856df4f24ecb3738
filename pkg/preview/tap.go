package preview

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-eyemouse/internal/log"
	"github.com/teslashibe/go-eyemouse/pkg/camera"
	"github.com/teslashibe/go-eyemouse/pkg/landmarks"
	"github.com/teslashibe/go-eyemouse/pkg/tracking"
)

// DefaultJPEGQuality balances dashboard bandwidth and legibility
const DefaultJPEGQuality = 70

// Tap encodes annotated frames as JPEG and hands them to a callback,
// at most once per interval. It implements tracking.Display without a key source.
type Tap struct {
	send     func(jpeg []byte)
	interval time.Duration
	quality  int
	now      func() time.Time
	last     time.Time
	fps      fpsCounter
}

var _ tracking.Display = (*Tap)(nil)

// NewTap creates a JPEG tap limited to maxFPS frames per second (0 = every frame)
func NewTap(send func(jpeg []byte), maxFPS int) *Tap {
	var interval time.Duration
	if maxFPS > 0 {
		interval = time.Second / time.Duration(maxFPS)
	}
	return &Tap{
		send:     send,
		interval: interval,
		quality:  DefaultJPEGQuality,
		now:      time.Now,
	}
}

// SetQuality sets the JPEG quality (1-100)
func (t *Tap) SetQuality(q int) {
	if q >= 1 && q <= 100 {
		t.quality = q
	}
}

// Show encodes the annotated frame if the interval has elapsed
func (t *Tap) Show(frame tracking.Frame, faces []landmarks.Face) {
	cf, ok := frame.(*camera.Frame)
	if !ok {
		return
	}

	now := t.now()
	fps := t.fps.tick(now)
	if t.interval > 0 && !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return
	}
	t.last = now

	data, err := Encode(cf.Color, faces, fps, t.quality)
	if err != nil {
		log.Debug("preview encode failed", "error", err)
		return
	}
	t.send(data)
}

// PollKey always returns -1
func (t *Tap) PollKey() int {
	return -1
}

// Encode draws the overlay on a copy of img and returns it as JPEG
func Encode(img gocv.Mat, faces []landmarks.Face, fps float64, quality int) ([]byte, error) {
	annotated := img.Clone()
	defer annotated.Close()

	Draw(&annotated, faces)
	if fps > 0 {
		drawFPS(&annotated, fps)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, annotated, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	// The native buffer is freed on Close
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
