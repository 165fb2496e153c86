package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/calendar-mentor/backend/internal/api/middleware"
	"github.com/calendar-mentor/backend/internal/storage"
	"github.com/calendar-mentor/backend/internal/storage/models"
)

// ListRecipes returns a handler that lists the saved recipes.
func ListRecipes(stores *storage.Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipes, err := stores.Recipes.Load(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load recipes")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(recipes)
	}
}

// RecipeSearchRequest is the JSON body for recipe search.
type RecipeSearchRequest struct {
	Query string `json:"query"`
}

// SearchRecipes returns a handler that matches saved recipes by name or
// ingredient substring, case-insensitive.
func SearchRecipes(stores *storage.Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RecipeSearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		recipes, err := stores.Recipes.Load(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load recipes")
			return
		}

		query := strings.ToLower(req.Query)
		matches := []models.Recipe{}
		for _, recipe := range recipes {
			if query == "" {
				continue
			}
			if strings.Contains(strings.ToLower(recipe.Name), query) ||
				strings.Contains(strings.ToLower(recipe.Ingredients), query) {
				matches = append(matches, recipe)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(matches)
	}
}
