package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/calendar-mentor/backend/internal/api/middleware"
	"github.com/calendar-mentor/backend/internal/storage"
	"github.com/calendar-mentor/backend/internal/storage/models"
)

// ListWellness returns a handler that lists the wellness log.
func ListWellness(stores *storage.Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := stores.Wellness.Load(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load wellness log")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	}
}

// CreateWellness returns a handler that records one wellness entry. A
// second entry for the same date replaces the first: the log keeps one
// row per day.
func CreateWellness(stores *storage.Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var entry models.WellnessEntry
		if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if entry.Date == "" {
			entry.Date = time.Now().Format("2006-01-02")
		}

		ctx := r.Context()
		entries, err := stores.Wellness.Load(ctx)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load wellness log")
			return
		}

		replaced := false
		for i, existing := range entries {
			if existing.Date == entry.Date {
				entries[i] = entry
				replaced = true
				break
			}
		}
		if !replaced {
			entries = append(entries, entry)
		}

		if err := stores.Wellness.Replace(ctx, entries); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to save wellness log")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(entry)
	}
}
