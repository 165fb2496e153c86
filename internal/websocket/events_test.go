package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/calendar-mentor/backend/internal/storage/models"
)

func drainBroadcast(t *testing.T, h *Hub) Message {
	t.Helper()
	select {
	case data := <-h.broadcast:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to decode broadcast: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("No broadcast received")
		return Message{}
	}
}

func TestBroadcastEventCreated(t *testing.T) {
	hub := NewHub()
	broadcaster := NewEventBroadcaster(hub)

	start := models.ParseTimestamp("2025-03-15 10:00")
	broadcaster.BroadcastEventCreated(models.Event{
		ID:       1,
		Title:    "Riunione",
		Start:    start,
		Category: models.CategoryMeeting,
	}, "assistant")

	msg := drainBroadcast(t, hub)
	if msg.Type != TypeEventCreated {
		t.Errorf("Expected event.created, got %s", msg.Type)
	}

	payload, _ := json.Marshal(msg.Payload)
	var decoded EventCreatedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if decoded.EventID != 1 || decoded.Source != "assistant" {
		t.Errorf("Unexpected payload: %+v", decoded)
	}
	if decoded.Start != "2025-03-15 10:00" {
		t.Errorf("Unexpected start rendering: %s", decoded.Start)
	}
}

func TestBroadcastTaskChanged(t *testing.T) {
	hub := NewHub()
	broadcaster := NewEventBroadcaster(hub)

	broadcaster.BroadcastTaskChanged("deleted", "Spesa", "")

	msg := drainBroadcast(t, hub)
	if msg.Type != TypeTaskChanged {
		t.Errorf("Expected task.changed, got %s", msg.Type)
	}
}

func TestNilBroadcasterIsSafe(t *testing.T) {
	var broadcaster *EventBroadcaster
	// Must not panic.
	broadcaster.BroadcastTaskChanged("deleted", "Spesa", "")
	broadcaster.BroadcastNotification("info", "Titolo", "Testo")
}

func TestHubRegisterAndBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub)
	hub.Register(client)

	hub.Broadcast([]byte(`{"type":"notification"}`))

	select {
	case data := <-client.Send():
		if string(data) != `{"type":"notification"}` {
			t.Errorf("Unexpected message: %s", data)
		}
	case <-time.After(time.Second):
		t.Fatal("Client did not receive broadcast")
	}

	hub.Unregister(client)
}
