package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/calendar-mentor/backend/internal/api/middleware"
	"github.com/calendar-mentor/backend/internal/storage"
	"github.com/calendar-mentor/backend/internal/storage/models"
)

// ListPantry returns a handler that lists the pantry contents.
func ListPantry(stores *storage.Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := stores.Pantry.Load(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load pantry")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(items)
	}
}

// ExpiringResponse groups pantry items by attention reason.
type ExpiringResponse struct {
	Expiring []models.PantryItem `json:"expiring"`
	Low      []models.PantryItem `json:"low"`
}

// ExpiringPantry returns a handler that reports items expiring within
// the next days (default 7, override with ?days=) and items below their
// minimum quantity. Rows with unparseable expiration dates are skipped.
func ExpiringPantry(stores *storage.Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := 7
		if param := r.URL.Query().Get("days"); param != "" {
			parsed, err := strconv.Atoi(param)
			if err != nil || parsed <= 0 {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid days parameter")
				return
			}
			days = parsed
		}

		items, err := stores.Pantry.Load(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load pantry")
			return
		}

		response := ExpiringResponse{
			Expiring: []models.PantryItem{},
			Low:      []models.PantryItem{},
		}
		cutoff := time.Now().AddDate(0, 0, days)
		for _, item := range items {
			if item.ExpirationDate != "" {
				if expiry, err := time.ParseInLocation("2006-01-02", item.ExpirationDate, time.Local); err == nil && expiry.Before(cutoff) {
					response.Expiring = append(response.Expiring, item)
				}
			}
			if item.MinQuantity > 0 && item.Quantity < item.MinQuantity {
				response.Low = append(response.Low, item)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
