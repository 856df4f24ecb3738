package preview

import (
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-eyemouse/pkg/camera"
	"github.com/teslashibe/go-eyemouse/pkg/geometry"
	"github.com/teslashibe/go-eyemouse/pkg/landmarks"
)

func testFace() landmarks.Face {
	f := landmarks.Face{Box: landmarks.Box{X: 200, Y: 120, W: 240, H: 240}, Score: 0.9}
	for i := range f.Points {
		f.Points[i] = geometry.Point{X: 220 + float64(i%10)*20, Y: 150 + float64(i/10)*30}
	}
	return f
}

func testFrame(t *testing.T) *camera.Frame {
	t.Helper()
	img := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()
	return camera.Prepare(img, true)
}

func TestDraw_MarksPixels(t *testing.T) {
	img := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()

	Draw(&img, []landmarks.Face{testFace()})

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	if gocv.CountNonZero(gray) == 0 {
		t.Error("Expected overlay to draw on the image")
	}
}

func TestEncode(t *testing.T) {
	frame := testFrame(t)
	defer frame.Close()

	data, err := Encode(frame.Color, []landmarks.Face{testFace()}, 30, DefaultJPEGQuality)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) < 4 {
		t.Fatalf("Expected JPEG data, got %d bytes", len(data))
	}
	if data[0] != 0xFF || data[1] != 0xD8 {
		t.Errorf("Expected JPEG SOI marker, got % x", data[:4])
	}

	// Source frame must stay unannotated
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame.Color, &gray, gocv.ColorBGRToGray)
	if gocv.CountNonZero(gray) != 0 {
		t.Error("Encode modified the source frame")
	}
}

func TestTap_RateLimit(t *testing.T) {
	var sent int
	tap := NewTap(func([]byte) { sent++ }, 10)

	clock := time.Unix(0, 0)
	tap.now = func() time.Time { return clock }

	frame := testFrame(t)
	defer frame.Close()

	tap.Show(frame, nil) // first frame always goes out
	clock = clock.Add(50 * time.Millisecond)
	tap.Show(frame, nil) // too soon
	clock = clock.Add(60 * time.Millisecond)
	tap.Show(frame, nil)

	if sent != 2 {
		t.Errorf("Sent %d frames, want 2", sent)
	}
	if tap.PollKey() != -1 {
		t.Error("Tap should never report a key")
	}
}

func TestTap_IgnoresForeignFrames(t *testing.T) {
	var sent int
	tap := NewTap(func([]byte) { sent++ }, 0)
	tap.Show(foreignFrame{}, nil)
	if sent != 0 {
		t.Error("Tap should skip frames it cannot decode")
	}
}

type foreignFrame struct{}

func (foreignFrame) Close() error { return nil }

func TestFPSCounter(t *testing.T) {
	var c fpsCounter
	start := time.Unix(100, 0)
	for i := 0; i < 30; i++ {
		c.tick(start.Add(time.Duration(i) * 33 * time.Millisecond))
	}
	fps := c.tick(start.Add(time.Second))
	if fps < 29 || fps > 32 {
		t.Errorf("FPS = %.1f, want about 30", fps)
	}
}
