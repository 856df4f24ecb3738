// Package protocol defines the WebSocket message types for pointer forwarding.
// This package is shared between eyemouse (tracker) and eyemouse-agent (desktop).
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Tracker → Agent messages
	TypeMove       MessageType = "move"        // Move pointer to absolute screen coordinates
	TypeClick      MessageType = "click"       // Left click at current position
	TypeRightClick MessageType = "right_click" // Right click at current position

	// Agent → Tracker messages
	TypeScreen MessageType = "screen" // Screen size, sent on connect
	TypeError  MessageType = "error"  // A command failed on the agent

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// =============================================================================
// Tracker → Agent Message Types
// =============================================================================

// MoveCommand moves the pointer to absolute screen coordinates
type MoveCommand struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

// ClickCommand presses a mouse button at the current pointer position
type ClickCommand struct {
	ID string `json:"id"`
}

// =============================================================================
// Agent → Tracker Message Types
// =============================================================================

// ScreenData reports the agent's screen size
type ScreenData struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ErrorData reports a failed command
type ErrorData struct {
	ID    string `json:"id"`    // Command ID that failed
	Error string `json:"error"` // Human-readable reason
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
