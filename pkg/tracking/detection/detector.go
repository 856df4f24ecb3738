// Package detection finds faces and their 68-point landmarks in camera frames
package detection

import (
	"errors"
	"fmt"
	"sort"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-eyemouse/pkg/geometry"
	"github.com/teslashibe/go-eyemouse/pkg/landmarks"
)

// Landmark backends
const (
	BackendOpenCV      = "opencv"      // gocv DNN module
	BackendONNXRuntime = "onnxruntime" // yalue/onnxruntime_go
)

// ErrUnsupportedFrame is returned when a frame did not come from pkg/camera
var ErrUnsupportedFrame = errors.New("detection: unsupported frame type")

// Detection represents a detected face box in pixel space
type Detection struct {
	Box        landmarks.Box
	Confidence float64 // Detection confidence (0-1)
}

// BoxDetector finds face boxes in an image
type BoxDetector interface {
	Find(img gocv.Mat) ([]Detection, error)
	Close() error
}

// Landmarker places 68 landmarks inside a face box
type Landmarker interface {
	Landmarks(img gocv.Mat, box landmarks.Box) ([landmarks.NumPoints]geometry.Point, error)
	Close() error
}

// Config holds detector configuration
type Config struct {
	FaceModelPath     string  // YuNet ONNX model
	LandmarkModelPath string  // 68-point landmark ONNX model
	Backend           string  // Landmark backend: "opencv" or "onnxruntime"
	ConfidenceThresh  float64 // Minimum face confidence (default 0.5)
	NMSThresh         float64 // Non-maximum suppression threshold
	InputWidth        int     // Face model input width
	InputHeight       int     // Face model input height
	LandmarkInputSize int     // Square landmark model input
	LandmarkChannels  int     // 1 feeds the grayscale frame, 3 the color frame
	LandmarkInput     string  // Input tensor name (onnxruntime backend)
	LandmarkOutput    string  // Output tensor name (onnxruntime backend)
	CropPadding       float64 // Fraction added around the face box before cropping
	MaxFaces          int     // 0 = no limit
	ORTLibraryPath    string  // ONNX Runtime shared library (onnxruntime backend)
	CoreML            bool    // Try CoreML acceleration (onnxruntime backend)
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		FaceModelPath:     "models/face_detection_yunet.onnx",
		LandmarkModelPath: "models/face_landmarks_68.onnx",
		Backend:           BackendOpenCV,
		ConfidenceThresh:  0.5,
		NMSThresh:         0.3,
		InputWidth:        320,
		InputHeight:       320,
		LandmarkInputSize: 112,
		LandmarkChannels:  3,
		LandmarkInput:     "input",
		LandmarkOutput:    "output",
		CropPadding:       0.2,
	}
}

// Validate checks the config for values the backends cannot use
func (c Config) Validate() error {
	var errs []error
	if c.Backend != BackendOpenCV && c.Backend != BackendONNXRuntime {
		errs = append(errs, fmt.Errorf("unknown landmark backend %q", c.Backend))
	}
	if c.ConfidenceThresh <= 0 || c.ConfidenceThresh > 1 {
		errs = append(errs, fmt.Errorf("confidence threshold %.2f out of range (0,1]", c.ConfidenceThresh))
	}
	if c.InputWidth <= 0 || c.InputHeight <= 0 {
		errs = append(errs, fmt.Errorf("face input size %dx%d must be positive", c.InputWidth, c.InputHeight))
	}
	if c.LandmarkInputSize <= 0 {
		errs = append(errs, fmt.Errorf("landmark input size %d must be positive", c.LandmarkInputSize))
	}
	if c.LandmarkChannels != 1 && c.LandmarkChannels != 3 {
		errs = append(errs, fmt.Errorf("landmark channels must be 1 or 3, got %d", c.LandmarkChannels))
	}
	if c.CropPadding < 0 {
		errs = append(errs, fmt.Errorf("crop padding %.2f must not be negative", c.CropPadding))
	}
	if c.MaxFaces < 0 {
		errs = append(errs, fmt.Errorf("max faces %d must not be negative", c.MaxFaces))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("detection: invalid config: %w", err)
	}
	return nil
}

// Rank orders detections best first.
// Priority: confidence * 0.7 + relative area * 0.3
func Rank(dets []Detection) []Detection {
	if len(dets) < 2 {
		return dets
	}

	maxArea := 0.0
	for _, d := range dets {
		if d.Box.Area() > maxArea {
			maxArea = d.Box.Area()
		}
	}

	score := func(d Detection) float64 {
		s := d.Confidence * 0.7
		if maxArea > 0 {
			s += d.Box.Area() / maxArea * 0.3
		}
		return s
	}

	ranked := make([]Detection, len(dets))
	copy(ranked, dets)
	sort.SliceStable(ranked, func(i, j int) bool {
		return score(ranked[i]) > score(ranked[j])
	})
	return ranked
}

// Limit keeps the best max detections (max <= 0 keeps all, in original order)
func Limit(dets []Detection, max int) []Detection {
	if max <= 0 || len(dets) <= max {
		return dets
	}
	return Rank(dets)[:max]
}
