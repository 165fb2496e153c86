package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/calendar-mentor/backend/internal/storage"
	"github.com/calendar-mentor/backend/internal/voice"
)

// fakeVoice is a canned VoiceIO for tests.
type fakeVoice struct {
	available bool
	outcome   voice.CaptureOutcome
	canRender bool
	renderErr error

	rendered []string
}

func (f *fakeVoice) Available() bool { return f.available }
func (f *fakeVoice) CanRender() bool { return f.canRender }

func (f *fakeVoice) Capture(ctx context.Context) voice.CaptureOutcome {
	return f.outcome
}

func (f *fakeVoice) Render(ctx context.Context, text string) error {
	f.rendered = append(f.rendered, text)
	return f.renderErr
}

func newTestHandler(t *testing.T, chat ChatService, voiceIO VoiceIO) (*Handler, *storage.Stores) {
	t.Helper()
	stores := storage.NewCSVStores(t.TempDir())
	interpreter := NewInterpreter(chat).WithClock(pinnedClock(t, "2025-03-15 10:00"))
	dispatcher := NewDispatcher(stores, nil).WithClock(pinnedClock(t, "2025-03-15 10:00"))
	return NewHandler(interpreter, dispatcher, voiceIO, nil), stores
}

func TestHandleCommandSuccess(t *testing.T) {
	chat := &fakeChat{reply: `{"action":"add_event","data":{"title":"Riunione","date":"2025-03-20","time":"11:00"},"response":"Ho aggiunto la riunione."}`}
	handler, stores := newTestHandler(t, chat, nil)
	ctx := context.Background()

	response := handler.HandleCommand(ctx, "aggiungi la riunione")
	if response != "Ho aggiunto la riunione." {
		t.Errorf("Unexpected response: %s", response)
	}

	events, _ := stores.Events.Load(ctx)
	if len(events) != 1 {
		t.Errorf("Expected 1 event persisted, got %d", len(events))
	}
}

func TestHandleCommandApologyOnInterpretFailure(t *testing.T) {
	chat := &fakeChat{err: errors.New("connection refused")}
	handler, stores := newTestHandler(t, chat, nil)
	ctx := context.Background()

	if response := handler.HandleCommand(ctx, "aggiungi la riunione"); response != ApologyResponse {
		t.Errorf("Expected apology, got %s", response)
	}

	events, _ := stores.Events.Load(ctx)
	if len(events) != 0 {
		t.Errorf("Expected no events persisted, got %d", len(events))
	}
}

func TestHandleCommandApologyOnDispatchFailure(t *testing.T) {
	// delete_task against a missing task file is the one store failure
	// reachable without filesystem tricks.
	chat := &fakeChat{reply: `{"action":"delete_task","data":{"title":"Spesa"},"response":"Eliminata"}`}
	handler, _ := newTestHandler(t, chat, nil)

	if response := handler.HandleCommand(context.Background(), "elimina la spesa"); response != ApologyResponse {
		t.Errorf("Expected apology, got %s", response)
	}
}

func TestHandleVoiceCommandUnavailable(t *testing.T) {
	chat := &fakeChat{reply: `{"action":"check_pantry","data":{},"response":"Controllo"}`}
	handler, _ := newTestHandler(t, chat, &fakeVoice{available: false})

	result := handler.HandleVoiceCommand(context.Background())
	if result.Captured {
		t.Error("Expected no capture")
	}
	if result.Status != voice.CaptureUnavailable {
		t.Errorf("Expected unavailable status, got %s", result.Status)
	}
	if chat.calls != 0 {
		t.Errorf("Expected no interpretation, got %d calls", chat.calls)
	}
}

func TestHandleVoiceCommandUnrecognizedSkipsPipeline(t *testing.T) {
	chat := &fakeChat{reply: `{"action":"check_pantry","data":{},"response":"Controllo"}`}
	voiceIO := &fakeVoice{
		available: true,
		outcome:   voice.CaptureOutcome{Status: voice.CaptureUnrecognized, Confidence: 0.2},
	}
	handler, stores := newTestHandler(t, chat, voiceIO)

	result := handler.HandleVoiceCommand(context.Background())
	if result.Status != voice.CaptureUnrecognized {
		t.Errorf("Expected unrecognized status, got %s", result.Status)
	}
	if chat.calls != 0 {
		t.Errorf("Expected no interpretation, got %d calls", chat.calls)
	}

	events, _ := stores.Events.Load(context.Background())
	if len(events) != 0 {
		t.Errorf("Expected no mutation, got %d events", len(events))
	}
}

func TestHandleVoiceCommandEndToEnd(t *testing.T) {
	chat := &fakeChat{reply: `{"action":"add_event","data":{"title":"Cena","date":"2025-03-21","time":"20:00"},"response":"Ho aggiunto la cena."}`}
	voiceIO := &fakeVoice{
		available: true,
		canRender: true,
		outcome:   voice.CaptureOutcome{Status: voice.CaptureOK, Text: "aggiungi la cena", Confidence: 0.9},
	}
	handler, stores := newTestHandler(t, chat, voiceIO)

	result := handler.HandleVoiceCommand(context.Background())
	if !result.Captured || result.Status != voice.CaptureOK {
		t.Fatalf("Expected successful capture, got %+v", result)
	}
	if result.Command != "aggiungi la cena" {
		t.Errorf("Unexpected command: %s", result.Command)
	}
	if result.Response != "Ho aggiunto la cena." || !result.Spoken {
		t.Errorf("Unexpected response: %+v", result)
	}
	if len(voiceIO.rendered) != 1 || voiceIO.rendered[0] != "Ho aggiunto la cena." {
		t.Errorf("Expected response spoken, got %v", voiceIO.rendered)
	}

	events, _ := stores.Events.Load(context.Background())
	if len(events) != 1 {
		t.Errorf("Expected 1 event persisted, got %d", len(events))
	}
}

func TestHandleVoiceCommandRenderFailureKeepsMutation(t *testing.T) {
	chat := &fakeChat{reply: `{"action":"add_event","data":{"title":"Cena","date":"2025-03-21","time":"20:00"},"response":"Ho aggiunto la cena."}`}
	voiceIO := &fakeVoice{
		available: true,
		canRender: true,
		renderErr: errors.New("no audio device"),
		outcome:   voice.CaptureOutcome{Status: voice.CaptureOK, Text: "aggiungi la cena", Confidence: 0.9},
	}
	handler, stores := newTestHandler(t, chat, voiceIO)

	result := handler.HandleVoiceCommand(context.Background())
	if result.Response != ApologyResponse {
		t.Errorf("Expected apology after render failure, got %s", result.Response)
	}
	if result.Spoken {
		t.Error("Expected spoken=false after render failure")
	}

	events, _ := stores.Events.Load(context.Background())
	if len(events) != 1 {
		t.Errorf("Expected mutation kept, got %d events", len(events))
	}
}
