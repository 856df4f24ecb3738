// Package tracking turns eye landmarks into pointer moves and clicks.
//
// Mapper, EdgeDwell and Blink are pure decision logic. Tracker owns them, runs the
// frame loop and is the only part that talks to the input sink.
package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-eyemouse/internal/log"
	"github.com/teslashibe/go-eyemouse/pkg/debug"
	"github.com/teslashibe/go-eyemouse/pkg/geometry"
	"github.com/teslashibe/go-eyemouse/pkg/landmarks"
)

// Frame is one captured camera image, already mirrored and ready for detection
type Frame interface {
	Close() error
}

// Camera supplies frames. Read blocks until a frame is ready.
type Camera interface {
	Read() (Frame, error)
}

// Detector finds faces and their 68 landmarks in a frame
type Detector interface {
	Detect(frame Frame) ([]landmarks.Face, error)
}

// InputSink receives pointer commands
type InputSink interface {
	MoveTo(x, y int) error
	Click() error
	RightClick() error
	ScreenSize() (width, height int)
}

// Display shows frames and reports key presses.
// PollKey must not block and returns -1 when no key is pressed.
type Display interface {
	Show(frame Frame, faces []landmarks.Face)
	PollKey() int
}

// Observer receives commands as they are issued. It is called from the
// tracking loop and must not block.
type Observer interface {
	OnEvent(Event)
}

// Quit keys
const (
	KeyQuit   = 'q'
	KeyEscape = 27
)

// CommandType names an issued pointer command
type CommandType string

const (
	CommandMove       CommandType = "move"
	CommandClick      CommandType = "click"
	CommandRightClick CommandType = "right_click"
)

// Event records one issued command
type Event struct {
	ID      string      `json:"id"`
	Session string      `json:"session"`
	Type    CommandType `json:"type"`
	X       int         `json:"x,omitempty"`
	Y       int         `json:"y,omitempty"`
	Edge    string      `json:"edge,omitempty"`
	Frame   uint64      `json:"frame"`
	Time    time.Time   `json:"time"`
}

// Stats is a snapshot of session counters and detector state
type Stats struct {
	Session      string      `json:"session"`
	Started      time.Time   `json:"started"`
	Frames       uint64      `json:"frames"`
	Detections   uint64      `json:"detections"`
	Faces        uint64      `json:"faces"`
	Moves        uint64      `json:"moves"`
	Clicks       uint64      `json:"clicks"`
	RightClicks  uint64      `json:"right_clicks"`
	SinkErrors   uint64      `json:"sink_errors"`
	BlinkCounter int         `json:"blink_counter"`
	LastEAR      float64     `json:"last_ear"`
	Pointer      ScreenPoint `json:"pointer"`
	Dwell        DwellState  `json:"dwell"`
}

// Tracker runs the capture → detect → react loop for one session
type Tracker struct {
	config   Config
	camera   Camera
	detector Detector
	sink     InputSink

	displays  []Display
	observers []Observer
	cadence   Cadence
	now       func() time.Time

	// Decision logic
	mapper *Mapper
	dwell  *EdgeDwell
	blink  *Blink

	// State
	session string
	frame   uint64
	log     *slog.Logger

	mu    sync.RWMutex
	stats Stats
}

// New creates a tracker. Screen dimensions are read from the sink once.
func New(config Config, camera Camera, detector Detector, sink InputSink) (*Tracker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if camera == nil || detector == nil || sink == nil {
		return nil, fmt.Errorf("%w: camera, detector and sink are required", ErrMissingDependency)
	}

	screenW, screenH := sink.ScreenSize()
	session := uuid.NewString()

	return &Tracker{
		config:   config,
		camera:   camera,
		detector: detector,
		sink:     sink,
		cadence:  EveryNth(config.FrameSkip),
		now:      time.Now,
		mapper:   NewMapper(config, screenW, screenH),
		dwell:    NewEdgeDwell(config, screenW),
		blink:    NewBlink(config),
		session:  session,
		log:      log.Component("tracker").With("session", session),
		stats:    Stats{Session: session},
	}, nil
}

// SetCadence replaces the detection cadence (the default is every FrameSkip frames)
func (t *Tracker) SetCadence(c Cadence) {
	t.cadence = c
}

// SetClock replaces the time source used for dwell timing
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

// AddDisplay attaches a debug display
func (t *Tracker) AddDisplay(d Display) {
	t.displays = append(t.displays, d)
}

// AddObserver attaches a command observer
func (t *Tracker) AddObserver(o Observer) {
	t.observers = append(t.observers, o)
}

// Session returns the session id
func (t *Tracker) Session() string {
	return t.session
}

// Config returns the active configuration
func (t *Tracker) Config() Config {
	return t.config
}

// Stats returns a snapshot safe to read from other goroutines
func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

// Run processes frames until the context is cancelled, a quit key is pressed
// or the camera fails. Camera failure is returned wrapped in ErrCameraRead.
func (t *Tracker) Run(ctx context.Context) error {
	t.mu.Lock()
	t.stats.Started = t.now()
	t.mu.Unlock()

	t.log.Info("eye tracking started",
		"frame_skip", t.config.FrameSkip,
		"ear_threshold", t.config.EARThreshold,
		"dwell", t.config.DwellThreshold,
		"deadband", t.config.MovementDeadband)

	for {
		select {
		case <-ctx.Done():
			t.log.Info("eye tracking stopped", "reason", ctx.Err())
			return nil
		default:
		}

		frame, err := t.camera.Read()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCameraRead, err)
		}

		faces := t.processFrame(frame)
		quit := t.show(frame, faces)
		if err := frame.Close(); err != nil {
			t.log.Debug("frame close failed", "frame", t.frame-1, "error", err)
		}

		if quit {
			t.log.Info("eye tracking stopped", "reason", "quit key")
			return nil
		}
	}
}

// processFrame runs detection when the cadence allows and reacts to every face.
// Returns the faces found, or nil on skipped frames.
func (t *Tracker) processFrame(frame Frame) []landmarks.Face {
	n := t.frame
	t.frame++

	t.mu.Lock()
	t.stats.Frames = t.frame
	t.mu.Unlock()

	if !t.cadence.ShouldDetect(n) {
		return nil
	}

	faces, err := t.detector.Detect(frame)

	t.mu.Lock()
	t.stats.Detections++
	t.stats.Faces += uint64(len(faces))
	t.mu.Unlock()

	if err != nil {
		t.log.Warn("detection failed", "frame", n, "error", err)
		return nil
	}

	for i := range faces {
		t.handleFace(&faces[i], n)
	}
	return faces
}

// handleFace applies pointer movement, edge dwell and blink logic for one face
func (t *Tracker) handleFace(face *landmarks.Face, n uint64) {
	left, right := face.LeftEye(), face.RightEye()
	now := t.now()

	if p, moved := t.mapper.Map(left, right); moved {
		t.issue(CommandMove, t.sink.MoveTo(p.X, p.Y), Event{X: p.X, Y: p.Y, Frame: n, Time: now})
	}

	gaze := geometry.GazePoint(left, right)
	if edge, fired := t.dwell.Update(gaze.X, now); fired {
		t.issue(CommandRightClick, t.sink.RightClick(), Event{Edge: edge.String(), Frame: n, Time: now})
	}

	ear, ok := AverageEAR(left, right)
	if ok && t.blink.Update(ear) {
		t.issue(CommandClick, t.sink.Click(), Event{Frame: n, Time: now})
	}

	debug.GazeLog("gaze",
		"frame", n,
		"gaze_x", gaze.X,
		"gaze_y", gaze.Y,
		"ear", ear,
		"ear_ok", ok,
		"blink", t.blink.Counter(),
		"zone", t.dwell.Zone(gaze.X).String())

	t.mu.Lock()
	if ok {
		t.stats.LastEAR = ear
	}
	t.stats.BlinkCounter = t.blink.Counter()
	t.stats.Pointer = t.mapper.Last()
	t.stats.Dwell = t.dwell.State()
	t.mu.Unlock()
}

// issue records a command that was sent to the sink and notifies observers.
// Sink errors are logged and do not stop the session.
func (t *Tracker) issue(cmd CommandType, sinkErr error, ev Event) {
	if sinkErr != nil {
		t.log.Warn("input sink rejected command", "command", cmd, "error", sinkErr)
		t.mu.Lock()
		t.stats.SinkErrors++
		t.mu.Unlock()
		return
	}

	t.mu.Lock()
	switch cmd {
	case CommandMove:
		t.stats.Moves++
	case CommandClick:
		t.stats.Clicks++
	case CommandRightClick:
		t.stats.RightClicks++
	}
	t.mu.Unlock()

	ev.ID = uuid.NewString()
	ev.Session = t.session
	ev.Type = cmd

	if cmd != CommandMove {
		t.log.Info("click", "command", cmd, "edge", ev.Edge, "frame", ev.Frame)
	} else {
		debug.Log("pointer moved", "x", ev.X, "y", ev.Y)
	}

	for _, o := range t.observers {
		o.OnEvent(ev)
	}
}

// show hands the frame to every display and reports whether a quit key was pressed
func (t *Tracker) show(frame Frame, faces []landmarks.Face) bool {
	quit := false
	for _, d := range t.displays {
		d.Show(frame, faces)
		if key := d.PollKey(); key == KeyQuit || key == KeyEscape {
			quit = true
		}
	}
	return quit
}
