package websocket

import (
	"log"

	"github.com/google/uuid"
	"github.com/calendar-mentor/backend/internal/storage/models"
)

// EventBroadcaster handles broadcasting WebSocket events.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastEventCreated announces a newly created calendar event.
func (b *EventBroadcaster) BroadcastEventCreated(event models.Event, source string) {
	payload := EventCreatedPayload{
		EventID:  event.ID,
		Title:    event.Title,
		Start:    models.FormatTimestamp(event.Start),
		Category: string(event.Category),
		Source:   source,
	}
	b.broadcast(NewMessage(TypeEventCreated, payload))
}

// BroadcastTaskChanged announces a task store change.
func (b *EventBroadcaster) BroadcastTaskChanged(action, taskName, status string) {
	payload := TaskChangedPayload{
		Action:   action,
		TaskName: taskName,
		Status:   status,
	}
	b.broadcast(NewMessage(TypeTaskChanged, payload))
}

// BroadcastAssistantResponse announces an assistant reply to a command.
func (b *EventBroadcaster) BroadcastAssistantResponse(command, response string, spoken bool) {
	payload := AssistantResponsePayload{
		MessageID: uuid.NewString(),
		Command:   command,
		Response:  response,
		Spoken:    spoken,
	}
	b.broadcast(NewMessage(TypeAssistantResponse, payload))
}

// BroadcastReminderDue announces an event whose start time is near.
func (b *EventBroadcaster) BroadcastReminderDue(event models.Event, minutes int) {
	payload := ReminderDuePayload{
		EventID: event.ID,
		Title:   event.Title,
		Start:   models.FormatTimestamp(event.Start),
		Minutes: minutes,
	}
	b.broadcast(NewMessage(TypeReminderDue, payload))
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	payload := NotificationPayload{
		Level:   level,
		Title:   title,
		Message: message,
	}
	b.broadcast(NewMessage(TypeNotification, payload))
}

func (b *EventBroadcaster) broadcast(msg Message) {
	if b == nil || b.hub == nil {
		return
	}
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Failed to serialize WebSocket message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}
