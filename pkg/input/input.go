// Package input provides pointer sinks: the local desktop, a dry-run logger,
// a recording mock and a remote agent over WebSocket.
package input

import (
	"context"
	"errors"
	"fmt"

	"github.com/teslashibe/go-eyemouse/pkg/tracking"
)

// Sink kinds accepted by New
const (
	KindDesktop = "desktop"
	KindLog     = "log"
	KindRemote  = "remote"
)

// Sentinel errors
var (
	// ErrNoDisplay is returned when the OS reports no usable screen.
	ErrNoDisplay = errors.New("input: no display")

	// ErrOutOfBounds is returned for coordinates outside the screen.
	ErrOutOfBounds = errors.New("input: coordinates out of bounds")

	// ErrClosed is returned when sending on a closed remote sink.
	ErrClosed = errors.New("input: sink closed")
)

var (
	_ tracking.InputSink = (*Desktop)(nil)
	_ tracking.InputSink = (*Log)(nil)
	_ tracking.InputSink = (*Mock)(nil)
	_ tracking.InputSink = (*Remote)(nil)
)

// CheckBounds reports ErrOutOfBounds unless 0 <= x <= width and 0 <= y <= height.
// The far edges are accepted because gaze mapping projects onto [0, width].
func CheckBounds(x, y, width, height int) error {
	if x < 0 || y < 0 || x > width || y > height {
		return fmt.Errorf("%w: (%d, %d) on %dx%d", ErrOutOfBounds, x, y, width, height)
	}
	return nil
}

// Clamp checks x, y with CheckBounds and pulls the far edges onto the last pixel
func Clamp(x, y, width, height int) (int, int, error) {
	if err := CheckBounds(x, y, width, height); err != nil {
		return 0, 0, err
	}
	return min(x, width-1), min(y, height-1), nil
}

// Options selects and parameterizes a sink for New
type Options struct {
	Kind      string
	AgentAddr string // remote only
	Width     int    // log only
	Height    int    // log only
}

// New builds the sink named by opts.Kind.
// The caller closes the result if it implements io.Closer.
func New(ctx context.Context, opts Options) (tracking.InputSink, error) {
	var (
		sink tracking.InputSink
		err  error
	)
	switch opts.Kind {
	case KindDesktop:
		sink, err = nilOnError(NewDesktop())
	case KindLog:
		sink, err = nilOnError(NewLog(opts.Width, opts.Height))
	case KindRemote:
		sink, err = nilOnError(DialRemote(ctx, opts.AgentAddr))
	default:
		err = fmt.Errorf("input: unknown sink %q", opts.Kind)
	}
	return sink, err
}

// nilOnError keeps a failed constructor from yielding a non-nil interface
func nilOnError[T tracking.InputSink](s T, err error) (tracking.InputSink, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
