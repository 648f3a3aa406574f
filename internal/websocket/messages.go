package websocket

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeSpeak      MessageType = "speak"
	MessageTypeSpeechInfo MessageType = "speech_info"
	MessageTypeSpeechEnd  MessageType = "speech_end"
	MessageTypePing       MessageType = "ping"
	MessageTypePong       MessageType = "pong"
	MessageTypeError      MessageType = "error"
)

// maxSpeakTextLength caps a single synthesis request.
const maxSpeakTextLength = 4096

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// SpeakMessage asks the server to synthesize and stream speech for a
// text fragment, typically a caption or narrative from an analysis.
type SpeakMessage struct {
	BaseMessage
	Text string `json:"text"`
}

// SpeechInfoMessage announces a decoded utterance. It precedes one
// binary frame per channel of little-endian float32 samples, sent in
// channel order, and is closed by a SpeechEndMessage.
type SpeechInfoMessage struct {
	BaseMessage
	SampleRate int   `json:"sample_rate"`
	Channels   int   `json:"channels"`
	FrameCount int   `json:"frame_count"`
	DurationMs int64 `json:"duration_ms"`
}

// SpeechEndMessage marks the end of an utterance's binary frames.
type SpeechEndMessage struct {
	BaseMessage
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// newErrorMessage builds an error frame for a request.
func newErrorMessage(requestID, code, message string) ErrorMessage {
	return ErrorMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeError,
			Timestamp: time.Now().Format(time.RFC3339),
			RequestID: requestID,
		},
		Code:    code,
		Message: message,
	}
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage validates an incoming message and returns its parsed
// form.
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid message format: %w", err)
	}

	switch base.Type {
	case MessageTypeSpeak:
		var msg SpeakMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid speak message: %w", err)
		}
		return &msg, v.validateSpeak(&msg)

	case MessageTypePing:
		var msg BaseMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	case "":
		return nil, fmt.Errorf("message missing type field")

	default:
		return nil, fmt.Errorf("unknown message type: %s", base.Type)
	}
}

// validateSpeak checks a speak request's fields
func (v *MessageValidator) validateSpeak(msg *SpeakMessage) error {
	if strings.TrimSpace(msg.Text) == "" {
		return fmt.Errorf("speak message requires text")
	}
	if len(msg.Text) > maxSpeakTextLength {
		return fmt.Errorf("speak text exceeds %d characters", maxSpeakTextLength)
	}
	return nil
}
