package assistant

import (
	"context"
	"log"

	"github.com/calendar-mentor/backend/internal/voice"
	"github.com/calendar-mentor/backend/internal/websocket"
)

// VoiceIO is the slice of the voice adapter the handler needs.
type VoiceIO interface {
	Available() bool
	CanRender() bool
	Capture(ctx context.Context) voice.CaptureOutcome
	Render(ctx context.Context, text string) error
}

// Handler orchestrates the full command pipeline. All work is
// synchronous and single-attempt; any failure anywhere in the chain
// converts to the fixed apology and is terminal for that invocation.
type Handler struct {
	interpreter *Interpreter
	dispatcher  *Dispatcher
	voice       VoiceIO
	broadcaster *websocket.EventBroadcaster
}

// NewHandler creates the command handler. The voice adapter may be nil
// for a text-only deployment; the broadcaster may be nil too.
func NewHandler(interpreter *Interpreter, dispatcher *Dispatcher, voiceIO VoiceIO, broadcaster *websocket.EventBroadcaster) *Handler {
	return &Handler{
		interpreter: interpreter,
		dispatcher:  dispatcher,
		voice:       voiceIO,
		broadcaster: broadcaster,
	}
}

// HandleCommand interprets and dispatches one typed command, returning
// the response text. Interpretation and store-write failures are logged
// with detail and answered with the apology; they never propagate.
func (h *Handler) HandleCommand(ctx context.Context, text string) string {
	descriptor, err := h.interpreter.Interpret(ctx, text)
	if err != nil {
		log.Printf("Command interpretation failed: %v", err)
		return ApologyResponse
	}

	response, err := h.dispatcher.Dispatch(ctx, descriptor)
	if err != nil {
		log.Printf("Command dispatch failed: %v", err)
		return ApologyResponse
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastAssistantResponse(text, response, false)
	}
	return response
}

// VoiceResult reports the outcome of one voice command invocation.
type VoiceResult struct {
	// Captured is false when no text was produced; Status says why.
	Captured bool                `json:"captured"`
	Status   voice.CaptureStatus `json:"status"`
	Command  string              `json:"command,omitempty"`
	Response string              `json:"response,omitempty"`
	Spoken   bool                `json:"spoken"`
}

// HandleVoiceCommand runs capture, then the command pipeline, then
// speaks the response. No text captured means no interpretation, no
// mutation and no spoken confirmation. A rendering failure after a
// successful dispatch does not roll the mutation back: the user gets
// the apology but the store keeps the write. Accepted inconsistency.
func (h *Handler) HandleVoiceCommand(ctx context.Context) VoiceResult {
	if h.voice == nil || !h.voice.Available() {
		return VoiceResult{Status: voice.CaptureUnavailable}
	}

	outcome := h.voice.Capture(ctx)
	if outcome.Status != voice.CaptureOK {
		return VoiceResult{Status: outcome.Status}
	}

	response := h.HandleCommand(ctx, outcome.Text)

	spoken := false
	if h.voice.CanRender() {
		if err := h.voice.Render(ctx, response); err != nil {
			log.Printf("Speech rendering failed: %v", err)
			response = ApologyResponse
		} else {
			spoken = true
		}
	}

	return VoiceResult{
		Captured: true,
		Status:   voice.CaptureOK,
		Command:  outcome.Text,
		Response: response,
		Spoken:   spoken,
	}
}

// UnavailableMessage is what the end-to-end voice endpoint reports when
// the capture capability is missing on the host.
func UnavailableMessage() string {
	return VoiceUnavailableMessage
}
