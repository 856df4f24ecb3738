package input

import (
	"log/slog"

	"github.com/teslashibe/go-eyemouse/internal/log"
)

// Log is a dry-run sink that logs commands instead of injecting them
type Log struct {
	logger *slog.Logger
	width  int
	height int
}

// NewLog creates a dry-run sink that pretends the screen is width x height
func NewLog(width, height int) (*Log, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrNoDisplay
	}
	return &Log{
		logger: log.Component("input").With("sink", KindLog),
		width:  width,
		height: height,
	}, nil
}

func (l *Log) MoveTo(x, y int) error {
	l.logger.Info("move", "x", x, "y", y)
	return nil
}

func (l *Log) Click() error {
	l.logger.Info("click")
	return nil
}

func (l *Log) RightClick() error {
	l.logger.Info("right click")
	return nil
}

func (l *Log) ScreenSize() (int, int) {
	return l.width, l.height
}
