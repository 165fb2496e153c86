package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/calendar-mentor/backend/internal/api/middleware"
	"github.com/calendar-mentor/backend/internal/assistant"
	"github.com/calendar-mentor/backend/internal/calendar"
	"github.com/calendar-mentor/backend/internal/storage"
	"github.com/calendar-mentor/backend/internal/storage/models"
)

const queryDateLayout = "2006-01-02"

// ListEvents returns a handler that lists events. With from/to query
// parameters the result is the expanded occurrence list for that range,
// recurring events included; without them it is the raw table.
func ListEvents(stores *storage.Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		events, err := stores.Events.Load(ctx)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load events")
			return
		}

		fromParam := r.URL.Query().Get("from")
		toParam := r.URL.Query().Get("to")

		w.Header().Set("Content-Type", "application/json")
		if fromParam == "" && toParam == "" {
			json.NewEncoder(w).Encode(events)
			return
		}

		from, to, err := parseRange(fromParam, toParam)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, err.Error())
			return
		}

		occurrences, err := calendar.ExpandRange(events, from, to)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, err.Error())
			return
		}
		json.NewEncoder(w).Encode(occurrences)
	}
}

// parseRange parses from/to query values. A missing bound defaults to a
// month around the present.
func parseRange(fromParam, toParam string) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -7)
	to := now.AddDate(0, 1, 0)

	if fromParam != "" {
		parsed, err := time.ParseInLocation(queryDateLayout, fromParam, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q", fromParam)
		}
		from = parsed
	}
	if toParam != "" {
		parsed, err := time.ParseInLocation(queryDateLayout, toParam, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q", toParam)
		}
		// Inclusive end of day.
		to = parsed.Add(24*time.Hour - time.Second)
	}
	return from, to, nil
}

// CreateEventRequest is the JSON body for event creation.
type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	EndTime     string `json:"end_time"`
	EventType   string `json:"event_type"`
}

// CreateEvent returns a handler that appends an event to the table. It
// funnels through the same dispatch path as assistant commands so both
// entries share identifier assignment and defaulting.
func CreateEvent(dispatcher *assistant.Dispatcher, stores *storage.Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Title == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Title is required")
			return
		}

		desc := assistant.Descriptor{
			Kind: assistant.ActionAddEvent,
			Event: &assistant.EventPayload{
				Title:       req.Title,
				Description: req.Description,
				Date:        req.Date,
				Time:        req.Time,
				EndTime:     req.EndTime,
				EventType:   req.EventType,
			},
		}
		if _, err := dispatcher.Dispatch(r.Context(), desc); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to save event")
			return
		}

		events, err := stores.Events.Load(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load events")
			return
		}

		created := findEventByTitle(events, req.Title)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

// findEventByTitle returns the newest event with the given title.
func findEventByTitle(events []models.Event, title string) models.Event {
	var found models.Event
	for _, e := range events {
		if e.Title == title && e.ID >= found.ID {
			found = e
		}
	}
	return found
}

// EventsFeed returns a handler that exports the event table as an ICS
// feed covering the default window around the present.
func EventsFeed(stores *storage.Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := stores.Events.Load(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load events")
			return
		}

		now := time.Now()
		from, to := calendar.FeedRange(now)
		occurrences, err := calendar.ExpandRange(events, from, to)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to expand events")
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
		fmt.Fprint(w, calendar.BuildFeed(occurrences, now))
	}
}
