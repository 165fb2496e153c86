// Package models contains the domain models for the application.
package models

import (
	"time"
)

// EventCategory classifies a calendar event and determines its display color.
type EventCategory string

const (
	CategoryGeneral  EventCategory = "general"
	CategoryMeeting  EventCategory = "meeting"
	CategoryDeadline EventCategory = "deadline"
	CategoryReminder EventCategory = "reminder"
	CategoryRecipe   EventCategory = "recipe"
	CategoryTask     EventCategory = "task"
	CategoryWellness EventCategory = "wellness"
	CategoryShopping EventCategory = "shopping"
)

// categoryColors maps each category to its display color.
var categoryColors = map[EventCategory]string{
	CategoryGeneral:  "#039BE5",
	CategoryMeeting:  "#7986CB",
	CategoryDeadline: "#EF5350",
	CategoryReminder: "#33B679",
	CategoryRecipe:   "#8E24AA",
	CategoryTask:     "#F4511E",
	CategoryWellness: "#0B8043",
	CategoryShopping: "#E67C73",
}

const defaultEventColor = "#616161"

// Color returns the display color for the category. Unknown categories
// fall back to a neutral grey.
func (c EventCategory) Color() string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return defaultEventColor
}

// Valid reports whether the category is one of the known values.
func (c EventCategory) Valid() bool {
	_, ok := categoryColors[c]
	return ok
}

// Event represents one calendar entry.
//
// Start and End are pointers because the store tolerates unparseable
// timestamps in the underlying file: they load as nil rather than
// failing the whole row.
type Event struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Start       *time.Time    `json:"start_datetime"`
	End         *time.Time    `json:"end_datetime"`
	Description string        `json:"description"`
	Category    EventCategory `json:"event_type"`
	Color       string        `json:"color"`
	AllDay      bool          `json:"is_all_day"`
	RecipeID    string        `json:"recipe_id,omitempty"`
	Location    string        `json:"location,omitempty"`
	Attendees   string        `json:"attendees,omitempty"`
	Recurring   string        `json:"recurring,omitempty"`
	CreatedAt   *time.Time    `json:"created_at"`
	UpdatedAt   *time.Time    `json:"updated_at"`
	Name        string        `json:"name,omitempty"`
}

// TimestampLayout is the textual date-time format events are stored in.
const TimestampLayout = "2006-01-02 15:04"

// ParseTimestamp parses a stored timestamp. Unparseable values coerce to
// nil rather than an error; a bare date gets a midnight time component.
func ParseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	layouts := []string{
		TimestampLayout,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t
		}
	}
	return nil
}

// FormatTimestamp renders a timestamp for storage. A nil timestamp
// renders as the empty string.
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(TimestampLayout)
}
