package tracking

import "errors"

// Sentinel errors for tracking sessions.
var (
	// ErrInvalidConfig is returned when a Config parameter is out of range.
	ErrInvalidConfig = errors.New("tracking: invalid config")

	// ErrCameraRead is returned when a frame cannot be acquired; it ends the session.
	ErrCameraRead = errors.New("tracking: camera read failed")

	// ErrMissingDependency is returned when New is called without a required collaborator.
	ErrMissingDependency = errors.New("tracking: missing dependency")
)
