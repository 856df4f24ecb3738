package detection

import (
	"errors"
	"image"
	"math"
	"testing"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-eyemouse/pkg/landmarks"
)

func TestFaceROI(t *testing.T) {
	tests := []struct {
		name    string
		box     landmarks.Box
		padding float64
		want    image.Rectangle
	}{
		{
			name: "square box no padding",
			box:  landmarks.Box{X: 100, Y: 100, W: 100, H: 100},
			want: image.Rect(100, 100, 200, 200),
		},
		{
			name: "tall box becomes square",
			box:  landmarks.Box{X: 100, Y: 100, W: 60, H: 100},
			want: image.Rect(80, 100, 180, 200),
		},
		{
			name:    "padding grows around center",
			box:     landmarks.Box{X: 100, Y: 100, W: 100, H: 100},
			padding: 0.2,
			want:    image.Rect(90, 90, 210, 210),
		},
		{
			name: "clamped at image edge",
			box:  landmarks.Box{X: -20, Y: 400, W: 100, H: 100},
			want: image.Rect(0, 400, 80, 480),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := faceROI(tc.box, 640, 480, tc.padding)
			if err != nil {
				t.Fatalf("faceROI: %v", err)
			}
			if got != tc.want {
				t.Errorf("faceROI = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFaceROI_OutsideImage(t *testing.T) {
	_, err := faceROI(landmarks.Box{X: 700, Y: 10, W: 50, H: 50}, 640, 480, 0)
	if !errors.Is(err, ErrEmptyROI) {
		t.Errorf("Expected ErrEmptyROI, got %v", err)
	}
}

func TestDecodeLandmarks(t *testing.T) {
	out := make([]float32, 2*landmarks.NumPoints)
	for i := 0; i < landmarks.NumPoints; i++ {
		out[2*i] = 0.5
		out[2*i+1] = 0.25
	}
	out[0], out[1] = 0, 0
	out[2*67], out[2*67+1] = 1, 1

	roi := image.Rect(100, 200, 300, 400)
	pts, err := decodeLandmarks(out, roi)
	if err != nil {
		t.Fatalf("decodeLandmarks: %v", err)
	}

	if pts[0].X != 100 || pts[0].Y != 200 {
		t.Errorf("Point 0 = %+v, want ROI origin", pts[0])
	}
	if pts[67].X != 300 || pts[67].Y != 400 {
		t.Errorf("Point 67 = %+v, want ROI corner", pts[67])
	}
	if math.Abs(pts[36].X-200) > 1e-6 || math.Abs(pts[36].Y-250) > 1e-6 {
		t.Errorf("Point 36 = %+v, want (200, 250)", pts[36])
	}
}

func TestDecodeLandmarks_ShortOutput(t *testing.T) {
	if _, err := decodeLandmarks(make([]float32, 10), image.Rect(0, 0, 10, 10)); err == nil {
		t.Error("Expected error for truncated model output")
	}
}

func TestCropBlob_Shape(t *testing.T) {
	img := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()

	blob := cropBlob(img, image.Rect(100, 100, 300, 300), 112)
	defer blob.Close()

	data, err := blob.DataPtrFloat32()
	if err != nil {
		t.Fatalf("DataPtrFloat32: %v", err)
	}
	if len(data) != 3*112*112 {
		t.Errorf("Blob has %d values, want %d", len(data), 3*112*112)
	}
}

func TestNewLandmarker_UnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "tflite"
	if _, err := NewLandmarker(cfg); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestNewLandmarker_MissingModel(t *testing.T) {
	for _, backend := range []string{BackendOpenCV, BackendONNXRuntime} {
		cfg := DefaultConfig()
		cfg.Backend = backend
		cfg.LandmarkModelPath = "/nonexistent/landmarks.onnx"
		if _, err := NewLandmarker(cfg); err == nil {
			t.Errorf("%s: expected error for missing model", backend)
		}
	}
}

func TestDNNLandmarker_Model(t *testing.T) {
	modelPath := findModelPath("face_landmarks_68.onnx")
	if modelPath == "" {
		t.Skip("Landmark model not found, skipping test")
	}

	cfg := DefaultConfig()
	cfg.LandmarkModelPath = modelPath
	l, err := NewDNNLandmarker(cfg)
	if err != nil {
		t.Fatalf("NewDNNLandmarker failed: %v", err)
	}
	defer l.Close()

	img := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()

	box := landmarks.Box{X: 200, Y: 150, W: 200, H: 200}
	pts, err := l.Landmarks(img, box)
	if err != nil {
		t.Fatalf("Landmarks failed: %v", err)
	}
	for i, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			t.Fatalf("Point %d is NaN", i)
		}
	}
}
