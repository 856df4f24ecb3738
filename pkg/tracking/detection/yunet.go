package detection

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-eyemouse/pkg/debug"
	"github.com/teslashibe/go-eyemouse/pkg/landmarks"
)

// YuNetDetector uses OpenCV's FaceDetectorYN for face boxes
type YuNetDetector struct {
	detector gocv.FaceDetectorYN
	config   Config
	size     image.Point
	mu       sync.Mutex // Protects inference
}

// NewYuNet creates a new YuNet face detector using GoCV's built-in FaceDetectorYN
func NewYuNet(cfg Config) (*YuNetDetector, error) {
	if _, err := os.Stat(cfg.FaceModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.FaceModelPath)
	}

	// Initial size is replaced per image
	size := image.Pt(cfg.InputWidth, cfg.InputHeight)
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.FaceModelPath,
		"", // No config file needed for ONNX
		size,
		float32(cfg.ConfidenceThresh),
		float32(cfg.NMSThresh),
		5000, // Top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNetDetector{
		detector: detector,
		config:   cfg,
		size:     size,
	}, nil
}

// Find returns the face boxes in img, in pixel coordinates
func (d *YuNetDetector) Find(img gocv.Mat) ([]Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if img.Empty() {
		return nil, errors.New("empty image")
	}
	if img.Channels() != 3 {
		return nil, fmt.Errorf("yunet needs a 3-channel image, got %d", img.Channels())
	}

	if sz := image.Pt(img.Cols(), img.Rows()); sz != d.size {
		d.detector.SetInputSize(sz)
		d.size = sz
	}

	faces := gocv.NewMat()
	defer faces.Close()

	d.detector.Detect(img, &faces)

	var detections []Detection
	for r := 0; r < faces.Rows(); r++ {
		// YuNet output format (15 columns):
		// 0-3: x, y, w, h (bounding box in pixels)
		// 4-13: 5 facial landmarks (x,y pairs)
		// 14: face score
		detections = append(detections, Detection{
			Box: landmarks.Box{
				X: float64(faces.GetFloatAt(r, 0)),
				Y: float64(faces.GetFloatAt(r, 1)),
				W: float64(faces.GetFloatAt(r, 2)),
				H: float64(faces.GetFloatAt(r, 3)),
			},
			Confidence: float64(faces.GetFloatAt(r, 14)),
		})
	}

	if len(detections) > 0 {
		debug.Log("yunet found faces", "count", len(detections))
	}

	return detections, nil
}

// Close releases the detector resources
func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}
