package tracking

import (
	"fmt"
	"time"
)

// Config holds all tunable parameters for eye-driven pointer control
type Config struct {
	// Blink click
	EARThreshold float64 // Eye aspect ratio below this counts as closed
	BlinkFrames  int     // Consecutive closed detection cycles before clicking

	// Edge dwell right-click
	EdgeRatio      float64       // Fraction of screen width treated as an edge zone
	DwellThreshold time.Duration // How long the gaze must rest in a zone

	// Pointer movement
	MovementDeadband int // Ignore screen moves of this many pixels or fewer on both axes
	CameraWidth      int // Capture width the landmarks are expressed in
	CameraHeight     int // Capture height the landmarks are expressed in

	// Detection cadence
	FrameSkip int // Run detection on every Nth frame (1 = every frame)
}

// DefaultConfig returns the reference configuration
func DefaultConfig() Config {
	return Config{
		EARThreshold: 0.25,
		BlinkFrames:  3,

		EdgeRatio:      0.2,
		DwellThreshold: 2 * time.Second,

		MovementDeadband: 10,
		CameraWidth:      640,
		CameraHeight:     480,

		FrameSkip: 5,
	}
}

// SensitiveConfig reacts faster: smaller deadband, shorter dwell, detection more often
func SensitiveConfig() Config {
	cfg := DefaultConfig()
	cfg.EARThreshold = 0.27
	cfg.BlinkFrames = 2
	cfg.DwellThreshold = 1500 * time.Millisecond
	cfg.MovementDeadband = 6
	cfg.FrameSkip = 3
	return cfg
}

// RelaxedConfig suppresses accidental clicks and jitter at the cost of latency
func RelaxedConfig() Config {
	cfg := DefaultConfig()
	cfg.EARThreshold = 0.22
	cfg.BlinkFrames = 4
	cfg.DwellThreshold = 3 * time.Second
	cfg.MovementDeadband = 15
	return cfg
}

// Preset returns a named configuration: "default", "sensitive" or "relaxed"
func Preset(name string) (Config, error) {
	switch name {
	case "", "default":
		return DefaultConfig(), nil
	case "sensitive":
		return SensitiveConfig(), nil
	case "relaxed":
		return RelaxedConfig(), nil
	}
	return Config{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, name)
}

// Validate reports the first out-of-range parameter
func (c Config) Validate() error {
	switch {
	case c.EARThreshold <= 0:
		return fmt.Errorf("%w: EAR threshold must be positive, got %v", ErrInvalidConfig, c.EARThreshold)
	case c.BlinkFrames < 1:
		return fmt.Errorf("%w: blink frames must be at least 1, got %d", ErrInvalidConfig, c.BlinkFrames)
	case c.EdgeRatio <= 0 || c.EdgeRatio >= 0.5:
		return fmt.Errorf("%w: edge ratio must be in (0, 0.5), got %v", ErrInvalidConfig, c.EdgeRatio)
	case c.DwellThreshold <= 0:
		return fmt.Errorf("%w: dwell threshold must be positive, got %v", ErrInvalidConfig, c.DwellThreshold)
	case c.MovementDeadband < 0:
		return fmt.Errorf("%w: movement deadband must not be negative, got %d", ErrInvalidConfig, c.MovementDeadband)
	case c.CameraWidth <= 0 || c.CameraHeight <= 0:
		return fmt.Errorf("%w: camera size must be positive, got %dx%d", ErrInvalidConfig, c.CameraWidth, c.CameraHeight)
	case c.FrameSkip < 1:
		return fmt.Errorf("%w: frame skip must be at least 1, got %d", ErrInvalidConfig, c.FrameSkip)
	}
	return nil
}
