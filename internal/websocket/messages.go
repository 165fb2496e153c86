package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeEventCreated      MessageType = "event.created"
	TypeTaskChanged       MessageType = "task.changed"
	TypeAssistantResponse MessageType = "assistant.response"
	TypeReminderDue       MessageType = "reminder.due"
	TypeNotification      MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventCreatedPayload is the payload for event.created messages.
type EventCreatedPayload struct {
	EventID  int    `json:"event_id"`
	Title    string `json:"title"`
	Start    string `json:"start_datetime"`
	Category string `json:"event_type"`
	Source   string `json:"source"` // "form", "assistant" or "voice"
}

// TaskChangedPayload is the payload for task.changed messages.
type TaskChangedPayload struct {
	Action   string `json:"action"` // "created", "updated", "deleted"
	TaskName string `json:"task_name"`
	Status   string `json:"status,omitempty"`
}

// AssistantResponsePayload is the payload for assistant.response messages.
type AssistantResponsePayload struct {
	MessageID string `json:"message_id"`
	Command   string `json:"command"`
	Response  string `json:"response"`
	Spoken    bool   `json:"spoken"`
}

// ReminderDuePayload is the payload for reminder.due messages.
type ReminderDuePayload struct {
	EventID int    `json:"event_id"`
	Title   string `json:"title"`
	Start   string `json:"start_datetime"`
	Minutes int    `json:"minutes_until_start"`
}

// NotificationPayload is the payload for notification messages.
type NotificationPayload struct {
	Level   string `json:"level"` // info, warning, error, success
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
