package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/calendar-mentor/backend/internal/api/middleware"
	"github.com/calendar-mentor/backend/internal/assistant"
	"github.com/calendar-mentor/backend/internal/storage"
	"github.com/calendar-mentor/backend/internal/websocket"
)

// ListTasks returns a handler that lists the task table. A missing task
// file is a user-visible condition, not an empty list.
func ListTasks(stores *storage.Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := stores.Tasks.Load(r.Context())
		if err != nil {
			if errors.Is(err, storage.ErrFileNotFound) {
				middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Task file not found")
				return
			}
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load tasks")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tasks)
	}
}

// DeleteTask returns a handler that removes a task by identifier and
// rewrites the table. An identifier that matches nothing still responds
// with success, matching the name-based delete in the command pipeline.
func DeleteTask(stores *storage.Stores, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid task id")
			return
		}

		ctx := r.Context()
		tasks, err := stores.Tasks.Load(ctx)
		if err != nil {
			if errors.Is(err, storage.ErrFileNotFound) {
				middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Task file not found")
				return
			}
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load tasks")
			return
		}

		kept := tasks[:0]
		removedName := ""
		for _, t := range tasks {
			if t.ID == id {
				removedName = t.Name
				continue
			}
			kept = append(kept, t)
		}

		if err := stores.Tasks.Replace(ctx, kept); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to save tasks")
			return
		}

		if broadcaster != nil && removedName != "" {
			broadcaster.BroadcastTaskChanged("deleted", removedName, "")
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// TaskChatRequest is the JSON body for the task chat endpoint.
type TaskChatRequest struct {
	Message string `json:"message"`
}

// TaskChatResponse is the JSON reply of the task chat endpoint.
type TaskChatResponse struct {
	Response string `json:"response"`
}

// TaskChat returns a handler that drives the task table through chat
// messages. Failures never surface as HTTP errors: the fixed Italian
// error text is a normal reply.
func TaskChat(manager *assistant.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TaskChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Message == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Message is required")
			return
		}

		response := manager.HandleMessage(r.Context(), req.Message)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TaskChatResponse{Response: response})
	}
}
