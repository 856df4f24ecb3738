package detection

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-eyemouse/pkg/geometry"
	"github.com/teslashibe/go-eyemouse/pkg/inference"
	"github.com/teslashibe/go-eyemouse/pkg/landmarks"
)

// ErrEmptyROI is returned when a face box lies outside the image
var ErrEmptyROI = errors.New("detection: face box outside image")

// NewLandmarker creates the landmark backend named by cfg.Backend
func NewLandmarker(cfg Config) (Landmarker, error) {
	switch cfg.Backend {
	case BackendOpenCV:
		return NewDNNLandmarker(cfg)
	case BackendONNXRuntime:
		return NewORTLandmarker(cfg)
	default:
		return nil, fmt.Errorf("unknown landmark backend %q", cfg.Backend)
	}
}

// DNNLandmarker runs the landmark model through OpenCV's DNN module
type DNNLandmarker struct {
	net    gocv.Net
	config Config
	mu     sync.Mutex
}

// NewDNNLandmarker loads the landmark model with gocv
func NewDNNLandmarker(cfg Config) (*DNNLandmarker, error) {
	if _, err := os.Stat(cfg.LandmarkModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.LandmarkModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.LandmarkModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load landmark model from %s", cfg.LandmarkModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &DNNLandmarker{net: net, config: cfg}, nil
}

// Landmarks returns the 68 points for the face in box
func (l *DNNLandmarker) Landmarks(img gocv.Mat, box landmarks.Box) ([landmarks.NumPoints]geometry.Point, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	roi, err := faceROI(box, img.Cols(), img.Rows(), l.config.CropPadding)
	if err != nil {
		return [landmarks.NumPoints]geometry.Point{}, err
	}

	blob := cropBlob(img, roi, l.config.LandmarkInputSize)
	defer blob.Close()

	l.net.SetInput(blob, "")
	output := l.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return [landmarks.NumPoints]geometry.Point{}, fmt.Errorf("read landmark output: %w", err)
	}
	return decodeLandmarks(data, roi)
}

// Close releases the network
func (l *DNNLandmarker) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.net.Close()
}

// ORTLandmarker runs the landmark model through ONNX Runtime
type ORTLandmarker struct {
	session *inference.Session
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	config  Config
	mu      sync.Mutex
}

// NewORTLandmarker initializes ONNX Runtime and loads the landmark model.
// Tensors are allocated once and reused for every face.
func NewORTLandmarker(cfg Config) (*ORTLandmarker, error) {
	if _, err := os.Stat(cfg.LandmarkModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.LandmarkModelPath)
	}

	if err := inference.Initialize(cfg.ORTLibraryPath); err != nil {
		return nil, err
	}

	session, err := inference.NewSession(
		cfg.LandmarkModelPath,
		[]string{cfg.LandmarkInput},
		[]string{cfg.LandmarkOutput},
		inference.Options{CoreML: cfg.CoreML},
	)
	if err != nil {
		return nil, err
	}

	size := int64(cfg.LandmarkInputSize)
	input, err := inference.CreateEmptyTensor[float32]([]int64{1, int64(cfg.LandmarkChannels), size, size})
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	output, err := inference.CreateEmptyTensor[float32]([]int64{1, 2 * landmarks.NumPoints})
	if err != nil {
		input.Destroy()
		session.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	return &ORTLandmarker{
		session: session,
		input:   input,
		output:  output,
		config:  cfg,
	}, nil
}

// Landmarks returns the 68 points for the face in box
func (l *ORTLandmarker) Landmarks(img gocv.Mat, box landmarks.Box) ([landmarks.NumPoints]geometry.Point, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	roi, err := faceROI(box, img.Cols(), img.Rows(), l.config.CropPadding)
	if err != nil {
		return [landmarks.NumPoints]geometry.Point{}, err
	}

	blob := cropBlob(img, roi, l.config.LandmarkInputSize)
	defer blob.Close()

	data, err := blob.DataPtrFloat32()
	if err != nil {
		return [landmarks.NumPoints]geometry.Point{}, fmt.Errorf("read input blob: %w", err)
	}
	dst := l.input.GetData()
	if len(data) != len(dst) {
		return [landmarks.NumPoints]geometry.Point{}, fmt.Errorf("input blob has %d values, model expects %d", len(data), len(dst))
	}
	copy(dst, data)

	if err := l.session.Run([]ort.Value{l.input}, []ort.Value{l.output}); err != nil {
		return [landmarks.NumPoints]geometry.Point{}, fmt.Errorf("landmark inference: %w", err)
	}
	return decodeLandmarks(l.output.GetData(), roi)
}

// Close releases tensors and the session
func (l *ORTLandmarker) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return errors.Join(l.input.Destroy(), l.output.Destroy(), l.session.Destroy())
}

// faceROI returns a square crop around box, padded and clamped to the image
func faceROI(box landmarks.Box, imgW, imgH int, padding float64) (image.Rectangle, error) {
	side := box.W
	if box.H > side {
		side = box.H
	}
	side *= 1 + padding

	c := box.Center()
	half := side / 2
	r := image.Rect(int(c.X-half), int(c.Y-half), int(c.X+half), int(c.Y+half))
	r = r.Intersect(image.Rect(0, 0, imgW, imgH))
	if r.Empty() {
		return image.Rectangle{}, ErrEmptyROI
	}
	return r, nil
}

// cropBlob crops roi and converts it to an NCHW blob scaled to [0,1]
func cropBlob(img gocv.Mat, roi image.Rectangle, size int) gocv.Mat {
	crop := img.Region(roi)
	defer crop.Close()
	swapRB := img.Channels() == 3
	return gocv.BlobFromImage(crop, 1.0/255.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), swapRB, false)
}

// decodeLandmarks maps x,y pairs normalized to the crop back to frame pixels
func decodeLandmarks(out []float32, roi image.Rectangle) ([landmarks.NumPoints]geometry.Point, error) {
	var pts [landmarks.NumPoints]geometry.Point
	if len(out) < 2*landmarks.NumPoints {
		return pts, fmt.Errorf("landmark output has %d values, need %d", len(out), 2*landmarks.NumPoints)
	}

	w := float64(roi.Dx())
	h := float64(roi.Dy())
	for i := range pts {
		pts[i] = geometry.Point{
			X: float64(roi.Min.X) + float64(out[2*i])*w,
			Y: float64(roi.Min.Y) + float64(out[2*i+1])*h,
		}
	}
	return pts, nil
}
