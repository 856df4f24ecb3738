package eyemouse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/teslashibe/go-eyemouse/internal/log"
	"github.com/teslashibe/go-eyemouse/pkg/camera"
	"github.com/teslashibe/go-eyemouse/pkg/debug"
	"github.com/teslashibe/go-eyemouse/pkg/inference"
	"github.com/teslashibe/go-eyemouse/pkg/input"
	"github.com/teslashibe/go-eyemouse/pkg/preview"
	"github.com/teslashibe/go-eyemouse/pkg/tracking"
	"github.com/teslashibe/go-eyemouse/pkg/tracking/detection"
	"github.com/teslashibe/go-eyemouse/pkg/web"
)

// App owns every component of a session and their lifecycle.
type App struct {
	config Config
	logger *slog.Logger

	capture  *camera.Capture
	detector *detection.FaceLandmarker
	sink     tracking.InputSink
	tracker  *tracking.Tracker

	window    *preview.Window
	webServer *web.Server
}

// New validates cfg and creates an application. Environment overrides are
// expected to be applied by the caller before flags.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug.Enabled = cfg.Debug || cfg.DebugGaze
	debug.Gaze = cfg.DebugGaze

	return &App{
		config: cfg,
		logger: log.Component("app"),
	}, nil
}

// Init opens the camera, loads models, connects the sink and builds the tracker.
// Call this after New() and before Run(). On error, Shutdown releases what was opened.
func (a *App) Init(ctx context.Context) error {
	a.logger.Info("eyemouse starting", "preset", a.config.Preset, "sink", a.config.Sink)
	if debug.Enabled {
		a.logger.Debug("debug mode enabled", "gaze", debug.Gaze)
	}

	capture, err := camera.Open(a.config.Camera)
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	a.capture = capture

	// Mapping and dwell work in camera pixels, so use what the device delivers
	trackCfg := a.config.Tracking
	trackCfg.CameraWidth, trackCfg.CameraHeight = capture.Width(), capture.Height()
	if trackCfg.CameraWidth != a.config.Camera.Width || trackCfg.CameraHeight != a.config.Camera.Height {
		a.logger.Warn("camera resolution differs from request",
			"requested", fmt.Sprintf("%dx%d", a.config.Camera.Width, a.config.Camera.Height),
			"actual", fmt.Sprintf("%dx%d", trackCfg.CameraWidth, trackCfg.CameraHeight))
	}

	detector, err := detection.New(a.config.Detection)
	if err != nil {
		return fmt.Errorf("detection: %w", err)
	}
	a.detector = detector

	sink, err := input.New(ctx, input.Options{
		Kind:      a.config.Sink,
		AgentAddr: a.config.AgentAddr,
		Width:     a.config.LogScreenWidth,
		Height:    a.config.LogScreenHeight,
	})
	if err != nil {
		return fmt.Errorf("input sink: %w", err)
	}
	a.sink = sink

	tracker, err := tracking.New(trackCfg, capture, detector, sink)
	if err != nil {
		return fmt.Errorf("tracker: %w", err)
	}
	a.tracker = tracker

	if !a.config.NoPreview {
		a.window = preview.NewWindow(DefaultPreviewName)
		tracker.AddDisplay(a.window)
	}

	if !a.config.NoDashboard {
		a.webServer = web.NewServer(":"+a.config.DashboardPort, tracker)
		tracker.AddObserver(a.webServer)
		tracker.AddDisplay(preview.NewTap(a.webServer.SendCameraFrame, a.config.StreamFPS))
	}

	screenW, screenH := sink.ScreenSize()
	a.logger.Info("session ready",
		"session", tracker.Session(),
		"camera", fmt.Sprintf("%dx%d", trackCfg.CameraWidth, trackCfg.CameraHeight),
		"screen", fmt.Sprintf("%dx%d", screenW, screenH),
		"backend", a.config.Detection.Backend)
	return nil
}

// Run starts the dashboard and drives the tracker on the calling goroutine,
// which must be the main one when a preview window is open.
// Blocks until ctx is cancelled, a quit key is pressed, the camera fails
// or a remote agent goes away.
func (a *App) Run(ctx context.Context) error {
	if a.tracker == nil {
		return errors.New("eyemouse: Run called before Init")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.webServer != nil {
		a.webServer.StartAsync(ctx)
		a.logger.Info("dashboard available", "url", "http://localhost:"+a.config.DashboardPort)
	}

	if remote, ok := a.sink.(*input.Remote); ok {
		go func() {
			select {
			case <-remote.Done():
				a.logger.Warn("agent connection lost, stopping", "failures", remote.Failures())
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	a.logger.Info("eye mouse active", "quit", "press q or Esc in the preview, or Ctrl+C")
	err := a.tracker.Run(ctx)

	stats := a.tracker.Stats()
	a.logger.Info("session summary",
		"frames", stats.Frames,
		"moves", stats.Moves,
		"clicks", stats.Clicks,
		"right_clicks", stats.RightClicks,
		"sink_errors", stats.SinkErrors)
	return err
}

// Shutdown releases all components. Safe to call after a failed Init.
func (a *App) Shutdown() {
	var errs []error

	if a.webServer != nil {
		errs = append(errs, a.webServer.Shutdown())
	}
	if a.window != nil {
		errs = append(errs, a.window.Close())
	}
	if c, ok := a.sink.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if a.detector != nil {
		errs = append(errs, a.detector.Close())
	}
	if inference.Initialized() {
		errs = append(errs, inference.Shutdown())
	}
	if a.capture != nil {
		errs = append(errs, a.capture.Close())
	}

	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("shutdown incomplete", "error", err)
	}
	a.logger.Info("goodbye")
}
