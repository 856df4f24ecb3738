package protocol

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh command ID
func NewID() string {
	return uuid.NewString()
}

func idOr(id string) string {
	if id == "" {
		return NewID()
	}
	return id
}

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewMoveMessage creates a move command (empty id generates one)
func NewMoveMessage(id string, x, y int) (*Message, error) {
	return NewMessage(TypeMove, MoveCommand{ID: idOr(id), X: x, Y: y})
}

// NewClickMessage creates a left click command
func NewClickMessage(id string) (*Message, error) {
	return NewMessage(TypeClick, ClickCommand{ID: idOr(id)})
}

// NewRightClickMessage creates a right click command
func NewRightClickMessage(id string) (*Message, error) {
	return NewMessage(TypeRightClick, ClickCommand{ID: idOr(id)})
}

// NewScreenMessage creates a screen size report
func NewScreenMessage(width, height int) (*Message, error) {
	return NewMessage(TypeScreen, ScreenData{Width: width, Height: height})
}

// NewErrorMessage reports that command id failed
func NewErrorMessage(id string, err error) (*Message, error) {
	return NewMessage(TypeError, ErrorData{ID: id, Error: err.Error()})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        idOr(id),
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetMoveCommand extracts a move command from a message
func (m *Message) GetMoveCommand() (*MoveCommand, error) {
	var data MoveCommand
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetClickCommand extracts a click or right click command from a message
func (m *Message) GetClickCommand() (*ClickCommand, error) {
	var data ClickCommand
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetScreenData extracts the screen size from a message
func (m *Message) GetScreenData() (*ScreenData, error) {
	var data ScreenData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts a command failure from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
