package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/calendar-mentor/backend/internal/api/middleware"
	"github.com/calendar-mentor/backend/internal/assistant"
	"github.com/calendar-mentor/backend/internal/voice"
)

// CommandRequest is the JSON body for the typed command endpoint.
type CommandRequest struct {
	Command string `json:"command"`
}

// CommandResponse is the JSON reply of the command endpoints.
type CommandResponse struct {
	Response string `json:"response"`
}

// AssistantCommand returns a handler that runs one typed command through
// the pipeline. Pipeline failures answer the fixed apology with status
// 200: they are expected outcomes, not transport errors.
func AssistantCommand(handler *assistant.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CommandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Command == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Command is required")
			return
		}

		response := handler.HandleCommand(r.Context(), req.Command)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(CommandResponse{Response: response})
	}
}

// VoiceCommandResponse is the JSON reply of the voice command endpoint.
type VoiceCommandResponse struct {
	assistant.VoiceResult
	Message string `json:"message,omitempty"`
}

// AssistantVoice returns a handler that runs one voice command: capture
// from the host microphone, interpret, dispatch, speak the response.
func AssistantVoice(handler *assistant.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := handler.HandleVoiceCommand(r.Context())

		response := VoiceCommandResponse{VoiceResult: result}
		if !result.Captured {
			response.Message = captureMessage(result)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

func captureMessage(result assistant.VoiceResult) string {
	switch result.Status {
	case voice.CaptureUnavailable:
		return assistant.UnavailableMessage()
	case voice.CaptureTimedOut:
		return "Nessun comando vocale rilevato."
	case voice.CaptureUnrecognized:
		return "Non ho capito il comando, puoi ripetere?"
	}
	return ""
}

// chatRelay is the slice of the language service the chat endpoint uses.
type chatRelay interface {
	Configured() bool
	Chat(ctx context.Context, system, user string) (string, error)
}

// ChatRequest is the JSON body for the free-form chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// Chat returns a handler that relays a free-form message to the
// language service, no command parsing involved. An unconfigured or
// failing service answers the fixed Italian messages with status 200.
func Chat(client chatRelay) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Message == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Message is required")
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if client == nil || !client.Configured() {
			json.NewEncoder(w).Encode(CommandResponse{Response: assistant.ChatUnavailableResponse})
			return
		}

		reply, err := client.Chat(r.Context(), "", req.Message)
		if err != nil {
			log.Printf("Chat relay failed: %v", err)
			json.NewEncoder(w).Encode(CommandResponse{Response: assistant.ChatErrorResponse})
			return
		}
		json.NewEncoder(w).Encode(CommandResponse{Response: reply})
	}
}
