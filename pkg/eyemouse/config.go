// Package eyemouse wires camera, detection, input and dashboard into one eye mouse session.
package eyemouse

import (
	"errors"
	"fmt"

	"github.com/teslashibe/go-eyemouse/internal/config"
	"github.com/teslashibe/go-eyemouse/pkg/camera"
	"github.com/teslashibe/go-eyemouse/pkg/input"
	"github.com/teslashibe/go-eyemouse/pkg/tracking"
	"github.com/teslashibe/go-eyemouse/pkg/tracking/detection"
)

// Default values not owned by a subpackage.
const (
	DefaultPreviewName = "Eye Tracking"
	DefaultStreamFPS   = 10
)

// Config holds all configuration for an eye mouse session.
// Flag parsing is done in cmd/eyemouse/main.go; this struct is data only.
type Config struct {
	// Debug enables verbose debug logging.
	Debug bool
	// DebugGaze adds per-frame EAR and gaze traces.
	DebugGaze bool

	// Preset names the tracking tuning. Empty means EYEMOUSE_PRESET or "default".
	Preset    string
	Tracking  tracking.Config
	Camera    camera.Config
	Detection detection.Config

	// Sink is one of input.KindDesktop, input.KindLog or input.KindRemote.
	Sink      string
	AgentAddr string // host:port of eyemouse-agent, remote sink only

	// LogScreen is the virtual screen size of the log sink.
	LogScreenWidth  int
	LogScreenHeight int

	// Feature flags.
	NoPreview   bool
	NoDashboard bool

	DashboardPort string
	StreamFPS     int
}

// DefaultConfig returns the reference setup: desktop sink, preview window and dashboard.
func DefaultConfig() Config {
	return Config{
		Tracking:        tracking.DefaultConfig(),
		Camera:          camera.DefaultConfig(),
		Detection:       detection.DefaultConfig(),
		Sink:            input.KindDesktop,
		LogScreenWidth:  1920,
		LogScreenHeight: 1080,
		DashboardPort:   config.DefaultDashboardPort,
		StreamFPS:       DefaultStreamFPS,
	}
}

// LoadEnvConfig resolves the preset and applies EYEMOUSE_* overrides on top of it.
// Call this before flag parsing so flags win over the environment.
func (c *Config) LoadEnvConfig() error {
	if c.Preset == "" {
		c.Preset = config.String("PRESET", "default")
	}
	preset, err := tracking.Preset(c.Preset)
	if err != nil {
		return err
	}
	c.Tracking = preset

	t := &c.Tracking
	t.EARThreshold = config.Float("EAR_THRESHOLD", t.EARThreshold)
	t.BlinkFrames = config.Int("BLINK_FRAMES", t.BlinkFrames)
	t.EdgeRatio = config.Float("EDGE_RATIO", t.EdgeRatio)
	t.DwellThreshold = config.Duration("DWELL", t.DwellThreshold)
	t.MovementDeadband = config.Int("DEADBAND", t.MovementDeadband)
	t.FrameSkip = config.Int("FRAME_SKIP", t.FrameSkip)

	c.Camera.Device = config.Int("CAMERA", c.Camera.Device)
	c.Camera.Width = config.Int("CAMERA_WIDTH", c.Camera.Width)
	c.Camera.Height = config.Int("CAMERA_HEIGHT", c.Camera.Height)

	c.Detection.FaceModelPath = config.String("FACE_MODEL", c.Detection.FaceModelPath)
	c.Detection.LandmarkModelPath = config.String("LANDMARK_MODEL", c.Detection.LandmarkModelPath)
	c.Detection.Backend = config.String("BACKEND", c.Detection.Backend)
	c.Detection.ORTLibraryPath = config.String("ORT_LIB", c.Detection.ORTLibraryPath)

	c.Sink = config.String("SINK", c.Sink)
	c.AgentAddr = config.String("AGENT", c.AgentAddr)
	c.DashboardPort = config.String("DASHBOARD_PORT", c.DashboardPort)
	c.NoPreview = config.Bool("NO_PREVIEW", c.NoPreview)
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Tracking.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Camera.Err(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Detection.Validate(); err != nil {
		errs = append(errs, err)
	}

	switch c.Sink {
	case input.KindDesktop:
	case input.KindLog:
		if c.LogScreenWidth <= 0 || c.LogScreenHeight <= 0 {
			errs = append(errs, &ConfigError{Field: "LogScreen", Message: "size must be positive"})
		}
	case input.KindRemote:
		if c.AgentAddr == "" {
			errs = append(errs, &ConfigError{Field: "AgentAddr", Message: "required for the remote sink"})
		}
	default:
		errs = append(errs, &ConfigError{Field: "Sink", Message: fmt.Sprintf("unknown sink %q", c.Sink)})
	}

	if c.StreamFPS < 0 {
		errs = append(errs, &ConfigError{Field: "StreamFPS", Message: "must not be negative"})
	}
	return errors.Join(errs...)
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
