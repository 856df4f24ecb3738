package detection

import (
	"errors"
	"fmt"
	"sync"

	"github.com/teslashibe/go-eyemouse/internal/log"
	"github.com/teslashibe/go-eyemouse/pkg/camera"
	"github.com/teslashibe/go-eyemouse/pkg/landmarks"
	"github.com/teslashibe/go-eyemouse/pkg/tracking"
)

// FaceLandmarker finds faces and their landmarks in camera frames.
// It implements tracking.Detector.
type FaceLandmarker struct {
	faces  BoxDetector
	marks  Landmarker
	config Config
	mu     sync.Mutex
}

var _ tracking.Detector = (*FaceLandmarker)(nil)

// New builds YuNet boxes plus the configured landmark backend
func New(cfg Config) (*FaceLandmarker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	faces, err := NewYuNet(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: face detector: %w", tracking.ErrMissingDependency, err)
	}

	marks, err := NewLandmarker(cfg)
	if err != nil {
		faces.Close()
		return nil, fmt.Errorf("%w: landmark model: %w", tracking.ErrMissingDependency, err)
	}

	log.Info("face landmarker ready",
		"faces", cfg.FaceModelPath,
		"landmarks", cfg.LandmarkModelPath,
		"backend", cfg.Backend)

	return NewFaceLandmarker(faces, marks, cfg), nil
}

// NewFaceLandmarker combines an existing box detector and landmarker
func NewFaceLandmarker(faces BoxDetector, marks Landmarker, cfg Config) *FaceLandmarker {
	return &FaceLandmarker{faces: faces, marks: marks, config: cfg}
}

// Detect returns every face in frame with its 68 landmarks.
// Faces whose landmarks cannot be placed are skipped.
func (f *FaceLandmarker) Detect(frame tracking.Frame) ([]landmarks.Face, error) {
	cf, ok := frame.(*camera.Frame)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedFrame, frame)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dets, err := f.faces.Find(cf.Color)
	if err != nil {
		return nil, fmt.Errorf("find faces: %w", err)
	}
	dets = Limit(dets, f.config.MaxFaces)

	src := cf.Color
	if f.config.LandmarkChannels == 1 {
		src = cf.Gray
	}

	faces := make([]landmarks.Face, 0, len(dets))
	for _, d := range dets {
		pts, err := f.marks.Landmarks(src, d.Box)
		if err != nil {
			log.Debug("landmarks skipped", "box", d.Box, "error", err)
			continue
		}
		faces = append(faces, landmarks.Face{Box: d.Box, Points: pts, Score: d.Confidence})
	}
	return faces, nil
}

// Close releases both models
func (f *FaceLandmarker) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return errors.Join(f.faces.Close(), f.marks.Close())
}
