// Package debug provides global debug logging flags
package debug

import "github.com/teslashibe/go-eyemouse/internal/log"

// Enabled controls whether debug logging is active
var Enabled bool

// Gaze controls whether per-frame gaze traces are shown (EAR, gaze point, dwell timers).
// Use --debug-gaze to enable these very verbose logs
var Gaze bool

// Log emits a debug message only if debug mode is enabled
func Log(msg string, args ...any) {
	if Enabled {
		log.Debug(msg, args...)
	}
}

// GazeLog emits a per-frame trace only if gaze debug mode is enabled
func GazeLog(msg string, args ...any) {
	if Gaze {
		log.Debug(msg, args...)
	}
}
