// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/calendar-mentor/backend/internal/storage"
	"github.com/calendar-mentor/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status           string `json:"status"`
	StorageReachable bool   `json:"storage_reachable"`
}

// HealthCheck returns a handler that performs a health check. Storage is
// considered reachable when the event table loads.
func HealthCheck(stores *storage.Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := stores.Events.Load(r.Context())
		reachable := err == nil

		status := "healthy"
		if !reachable {
			status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		if status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(HealthResponse{
			Status:           status,
			StorageReachable: reachable,
		})
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	AssistantConfigured bool `json:"assistant_configured"`
	VoiceAvailable      bool `json:"voice_available"`
	EventsCount         int  `json:"events_count"`
	TasksCount          int  `json:"tasks_count"`
	PantryCount         int  `json:"pantry_count"`
	RecipesCount        int  `json:"recipes_count"`
	ConnectedClients    int  `json:"connected_clients"`
}

// StatusInfo exposes the capability probes the status endpoint reports.
type StatusInfo struct {
	AssistantConfigured bool
	VoiceAvailable      bool
}

// Status returns a handler that provides system status information.
// Table counts are best effort: a store that fails to load reports zero.
func Status(stores *storage.Stores, hub *websocket.Hub, info StatusInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		response := StatusResponse{
			AssistantConfigured: info.AssistantConfigured,
			VoiceAvailable:      info.VoiceAvailable,
		}
		if events, err := stores.Events.Load(ctx); err == nil {
			response.EventsCount = len(events)
		}
		if tasks, err := stores.Tasks.Load(ctx); err == nil {
			response.TasksCount = len(tasks)
		}
		if items, err := stores.Pantry.Load(ctx); err == nil {
			response.PantryCount = len(items)
		}
		if recipes, err := stores.Recipes.Load(ctx); err == nil {
			response.RecipesCount = len(recipes)
		}
		if hub != nil {
			response.ConnectedClients = hub.ClientCount()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
