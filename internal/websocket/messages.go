package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/satriahrh/cat-translator/domain/entities"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Messages sent by the browser
const (
	MessageTypeRecordingStart MessageType = "recording_start"
	MessageTypeRecordingStop  MessageType = "recording_stop"
	MessageTypePing           MessageType = "ping"
)

// Messages sent to the browser
const (
	MessageTypeSession          MessageType = "session"
	MessageTypeRecordingStarted MessageType = "recording_started"
	MessageTypeProcessing       MessageType = "processing"
	MessageTypeTranslation      MessageType = "translation"
	MessageTypeWarning          MessageType = "warning"
	MessageTypeError            MessageType = "error"
	MessageTypeLog              MessageType = "log"
	MessageTypePong             MessageType = "pong"
)

// Error codes carried by ErrorMessage
const (
	ErrorCodeInvalidMessage        = "invalid_message"
	ErrorCodeFrameConversionFailed = "frame_conversion_failed"
	ErrorCodeSessionBusy           = "session_busy"
	ErrorCodeNotRecording          = "not_recording"
	ErrorCodeTranslationFailed     = "translation_failed"
)

const (
	minSampleRate = 8000
	maxSampleRate = 192000
	maxChannels   = 8
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// RecordingStartMessage announces the format of the frames that follow
type RecordingStartMessage struct {
	BaseMessage
	SampleRate int `json:"sample_rate"`
	Channels   int `json:"channels"`
}

// RecordingStopMessage ends the current recording
type RecordingStopMessage struct {
	BaseMessage
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// SessionMessage tells the browser which session it is bound to
type SessionMessage struct {
	BaseMessage
	SessionID string                `json:"session_id"`
	State     entities.SessionState `json:"state"`
}

// RecordingStartedMessage acknowledges recording_start
type RecordingStartedMessage struct {
	BaseMessage
	SessionID  string `json:"session_id"`
	SampleRate int    `json:"sample_rate"`
}

// ProcessingMessage signals that the recording is being translated
type ProcessingMessage struct {
	BaseMessage
	SessionID   string `json:"session_id"`
	SampleCount int    `json:"sample_count"`
}

// TranslationMessage carries the translation of a recording
type TranslationMessage struct {
	BaseMessage
	SessionID  string `json:"session_id"`
	Text       string `json:"text"`
	DurationMs int64  `json:"duration_ms"`
}

// WarningMessage carries a non-fatal notice such as an empty recording
type WarningMessage struct {
	BaseMessage
	Message string `json:"message"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// LogMessage carries the session's debug log
type LogMessage struct {
	BaseMessage
	Entries []entities.LogEntry `json:"entries"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage parses and validates an incoming text message
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeRecordingStart:
		var msg RecordingStartMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid recording start message: %w", err)
		}
		if err := v.validateRecordingStart(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypeRecordingStop:
		return &RecordingStopMessage{BaseMessage: base}, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	case "":
		return nil, fmt.Errorf("message missing type field")

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

// validateRecordingStart fills defaults and checks the announced format.
// Zero values mean "use the server default" and are left for the caller.
func (v *MessageValidator) validateRecordingStart(msg *RecordingStartMessage) error {
	if msg.SampleRate != 0 && (msg.SampleRate < minSampleRate || msg.SampleRate > maxSampleRate) {
		return fmt.Errorf("sample_rate must be between %d and %d", minSampleRate, maxSampleRate)
	}
	if msg.Channels == 0 {
		msg.Channels = 1
	}
	if msg.Channels < 1 || msg.Channels > maxChannels {
		return fmt.Errorf("channels must be between 1 and %d", maxChannels)
	}
	return nil
}

func newBase(t MessageType) BaseMessage {
	return BaseMessage{
		Type:      t,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message, details string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: newBase(MessageTypeError),
		Code:        code,
		Message:     message,
		Details:     details,
	}
}

// CreateWarningMessage creates a warning message
func CreateWarningMessage(message string) *WarningMessage {
	return &WarningMessage{
		BaseMessage: newBase(MessageTypeWarning),
		Message:     message,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: newBase(MessageTypePong),
		Data:        data,
	}
}

// CreateLogMessage creates a log snapshot message
func CreateLogMessage(entries []entities.LogEntry) *LogMessage {
	return &LogMessage{
		BaseMessage: newBase(MessageTypeLog),
		Entries:     entries,
	}
}
