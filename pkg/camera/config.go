// Package camera captures mirrored webcam frames for eye tracking.
package camera

import "fmt"

// Config holds capture settings.
type Config struct {
	Device    int  `json:"device"`    // Video device index
	Width     int  `json:"width"`     // Requested frame width in pixels
	Height    int  `json:"height"`    // Requested frame height in pixels
	Framerate int  `json:"framerate"` // Requested FPS
	Mirror    bool `json:"mirror"`    // Flip horizontally so moving right moves the pointer right
}

// DefaultConfig returns the reference 640x480 mirrored capture.
func DefaultConfig() Config {
	return Config{
		Device:    0,
		Width:     640,
		Height:    480,
		Framerate: 30,
		Mirror:    true,
	}
}

// HDConfig returns a 1280x720 capture for cameras that handle it well.
// The tracker must be configured with the actual resolution.
func HDConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	return cfg
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device < 0 {
		errors = append(errors, "device must not be negative")
	}
	if c.Width < 160 || c.Width > 4096 {
		errors = append(errors, "width must be between 160 and 4096")
	}
	if c.Height < 120 || c.Height > 2160 {
		errors = append(errors, "height must be between 120 and 2160")
	}
	if c.Framerate < 1 || c.Framerate > 120 {
		errors = append(errors, "framerate must be between 1 and 120")
	}

	return errors
}

// Err returns the validation errors as a single error, or nil.
func (c *Config) Err() error {
	if errs := c.Validate(); len(errs) > 0 {
		return fmt.Errorf("camera: invalid config: %v", errs)
	}
	return nil
}
