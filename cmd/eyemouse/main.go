// eyemouse - hands-free mouse control from a webcam.
// Gaze moves the pointer, a deliberate blink left-clicks and dwelling at
// the left or right edge right-clicks.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/teslashibe/go-eyemouse/internal/log"
	"github.com/teslashibe/go-eyemouse/pkg/eyemouse"
	"github.com/teslashibe/go-eyemouse/pkg/input"
	"github.com/teslashibe/go-eyemouse/pkg/tracking/detection"
)

func main() {
	cfg, level := parseFlags()
	log.Init(level)

	app, err := eyemouse.New(cfg)
	if err != nil {
		fatal("configuration error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Init(ctx); err != nil {
		app.Shutdown()
		fatal("initialization failed", err)
	}

	err = app.Run(ctx)
	app.Shutdown()
	if err != nil {
		fatal("runtime error", err)
	}
}

func fatal(msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}

// parseFlags applies EYEMOUSE_* environment overrides, then command line flags.
func parseFlags() (eyemouse.Config, string) {
	cfg := eyemouse.DefaultConfig()

	// The preset is resolved before the other flags so they refine it
	cfg.Preset = presetArg(os.Args[1:])
	if err := cfg.LoadEnvConfig(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flag.String("preset", cfg.Preset, "Tuning preset: default, sensitive, relaxed")

	t := &cfg.Tracking
	flag.Float64Var(&t.EARThreshold, "ear", t.EARThreshold, "Eye aspect ratio below which the eye counts as closed")
	flag.IntVar(&t.BlinkFrames, "blink-frames", t.BlinkFrames, "Consecutive closed detections that make a click")
	flag.Float64Var(&t.EdgeRatio, "edge", t.EdgeRatio, "Width fraction of the left and right dwell zones")
	flag.DurationVar(&t.DwellThreshold, "dwell", t.DwellThreshold, "Time in an edge zone before a right-click")
	flag.IntVar(&t.MovementDeadband, "deadband", t.MovementDeadband, "Minimum pointer movement in screen pixels")
	flag.IntVar(&t.FrameSkip, "frame-skip", t.FrameSkip, "Run detection on every Nth frame")

	flag.IntVar(&cfg.Camera.Device, "camera", cfg.Camera.Device, "Camera device index")
	flag.IntVar(&cfg.Camera.Width, "width", cfg.Camera.Width, "Requested camera width")
	flag.IntVar(&cfg.Camera.Height, "height", cfg.Camera.Height, "Requested camera height")

	d := &cfg.Detection
	flag.StringVar(&d.FaceModelPath, "face-model", d.FaceModelPath, "YuNet face detection model")
	flag.StringVar(&d.LandmarkModelPath, "landmark-model", d.LandmarkModelPath, "68-point landmark model (ONNX)")
	flag.StringVar(&d.Backend, "backend", d.Backend,
		fmt.Sprintf("Landmark backend: %s, %s", detection.BackendOpenCV, detection.BackendONNXRuntime))
	flag.StringVar(&d.ORTLibraryPath, "ort-lib", d.ORTLibraryPath, "Path to the ONNX Runtime shared library")
	flag.BoolVar(&d.CoreML, "coreml", d.CoreML, "Use the CoreML execution provider (onnxruntime backend)")

	flag.StringVar(&cfg.Sink, "sink", cfg.Sink,
		fmt.Sprintf("Pointer sink: %s, %s, %s", input.KindDesktop, input.KindLog, input.KindRemote))
	flag.StringVar(&cfg.AgentAddr, "agent", cfg.AgentAddr, "eyemouse-agent host:port for the remote sink")

	flag.BoolVar(&cfg.NoPreview, "no-preview", cfg.NoPreview, "Disable the preview window")
	flag.BoolVar(&cfg.NoDashboard, "no-dashboard", cfg.NoDashboard, "Disable the web dashboard")
	flag.StringVar(&cfg.DashboardPort, "port", cfg.DashboardPort, "Web dashboard port")
	flag.IntVar(&cfg.StreamFPS, "stream-fps", cfg.StreamFPS, "Dashboard camera stream rate (0 = every frame)")

	flag.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")
	flag.BoolVar(&cfg.DebugGaze, "debug-gaze", false, "Log EAR and gaze on every detection")
	level := flag.String("log-level", "info", "Log level: debug, info, warn, error (EYEMOUSE_LOG_LEVEL)")

	flag.Parse()

	if cfg.Debug || cfg.DebugGaze {
		*level = "debug"
	} else if v := os.Getenv("EYEMOUSE_LOG_LEVEL"); v != "" && !isSet("log-level") {
		*level = v
	}
	return cfg, *level
}

func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) { set = set || f.Name == name })
	return set
}

// presetArg finds -preset or --preset in args, in either "-preset x" or "-preset=x" form
func presetArg(args []string) string {
	for i, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || name != "preset" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
