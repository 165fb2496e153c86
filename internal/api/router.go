// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/calendar-mentor/backend/internal/api/handlers"
	"github.com/calendar-mentor/backend/internal/api/middleware"
	"github.com/calendar-mentor/backend/internal/assistant"
	"github.com/calendar-mentor/backend/internal/storage"
	"github.com/calendar-mentor/backend/internal/websocket"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Stores      *storage.Stores
	Hub         *websocket.Hub
	Broadcaster *websocket.EventBroadcaster

	Assistant   *assistant.Handler
	Dispatcher  *assistant.Dispatcher
	TaskManager *assistant.TaskManager
	Chat        *assistant.OpenAIClient

	Status handlers.StatusInfo

	// StaticDir serves the frontend; empty disables it.
	StaticDir string
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(s Services) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(s.Stores)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(s.Stores, s.Hub, s.Status)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub)).Methods("GET")

	// Event endpoints
	api.HandleFunc("/events", handlers.ListEvents(s.Stores)).Methods("GET")
	api.HandleFunc("/events", handlers.CreateEvent(s.Dispatcher, s.Stores)).Methods("POST")
	api.HandleFunc("/events/feed.ics", handlers.EventsFeed(s.Stores)).Methods("GET")

	// Task endpoints
	api.HandleFunc("/tasks", handlers.ListTasks(s.Stores)).Methods("GET")
	api.HandleFunc("/tasks/chat", handlers.TaskChat(s.TaskManager)).Methods("POST")
	api.HandleFunc("/tasks/{id}", handlers.DeleteTask(s.Stores, s.Broadcaster)).Methods("DELETE")

	// Assistant endpoints
	api.HandleFunc("/assistant/command", handlers.AssistantCommand(s.Assistant)).Methods("POST")
	api.HandleFunc("/assistant/voice", handlers.AssistantVoice(s.Assistant)).Methods("POST")
	api.HandleFunc("/chat", handlers.Chat(s.Chat)).Methods("POST")

	// Pantry and recipe endpoints
	api.HandleFunc("/pantry", handlers.ListPantry(s.Stores)).Methods("GET")
	api.HandleFunc("/pantry/expiring", handlers.ExpiringPantry(s.Stores)).Methods("GET")
	api.HandleFunc("/recipes", handlers.ListRecipes(s.Stores)).Methods("GET")
	api.HandleFunc("/recipes/search", handlers.SearchRecipes(s.Stores)).Methods("POST")

	// Wellness endpoints
	api.HandleFunc("/wellness", handlers.ListWellness(s.Stores)).Methods("GET")
	api.HandleFunc("/wellness", handlers.CreateWellness(s.Stores)).Methods("POST")

	// Serve static frontend files
	if s.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))
	}

	return r
}
