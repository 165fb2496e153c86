package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActionKind names one of the recognized command actions.
type ActionKind string

const (
	ActionAddEvent     ActionKind = "add_event"
	ActionAddTask      ActionKind = "add_task"
	ActionDeleteTask   ActionKind = "delete_task"
	ActionSearchRecipe ActionKind = "search_recipe"
	ActionManageTask   ActionKind = "manage_task"
	ActionCheckPantry  ActionKind = "check_pantry"
)

// EventPayload carries the data for add_event and add_task actions.
type EventPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	EndTime     string `json:"end_time"`
	EventType   string `json:"event_type"`
}

// TaskRefPayload carries the data for delete_task actions. Tasks are
// referenced by name, not identifier; a miss is a silent no-op.
type TaskRefPayload struct {
	Title string `json:"title"`
}

// QueryPayload carries the data for the read-only action kinds
// (search_recipe, manage_task, check_pantry).
type QueryPayload struct {
	Query string `json:"query"`
}

// Descriptor is the structured result of interpreting a command: a
// tagged union keyed by Kind. Exactly one of the payload pointers is
// set, matching the kind.
type Descriptor struct {
	Kind     ActionKind
	Response string

	Event *EventPayload   // add_event, add_task
	Task  *TaskRefPayload // delete_task
	Query *QueryPayload   // search_recipe, manage_task, check_pantry
}

// wireDescriptor is the JSON shape the language service is instructed
// to return.
type wireDescriptor struct {
	Action   string          `json:"action"`
	Data     json.RawMessage `json:"data"`
	Response string          `json:"response"`
}

// wireData is the loose payload shape; each variant picks the fields it
// needs.
type wireData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	EndTime     string `json:"end_time"`
	EventType   string `json:"event_type"`
	Query       string `json:"query"`
}

// ParseDescriptor decodes the service reply into a Descriptor. It fails
// closed: an action kind outside the recognized set returns
// ErrUnrecognizedAction and never produces a dispatchable value.
func ParseDescriptor(raw string) (Descriptor, error) {
	var wire wireDescriptor
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Descriptor{}, fmt.Errorf("decoding descriptor: %w", err)
	}

	var data wireData
	if len(wire.Data) > 0 {
		if err := json.Unmarshal(wire.Data, &data); err != nil {
			return Descriptor{}, fmt.Errorf("decoding descriptor data: %w", err)
		}
	}

	d := Descriptor{
		Kind:     ActionKind(wire.Action),
		Response: wire.Response,
	}

	switch d.Kind {
	case ActionAddEvent, ActionAddTask:
		d.Event = &EventPayload{
			Title:       data.Title,
			Description: data.Description,
			Date:        data.Date,
			Time:        data.Time,
			EndTime:     data.EndTime,
			EventType:   data.EventType,
		}
	case ActionDeleteTask:
		d.Task = &TaskRefPayload{Title: data.Title}
	case ActionSearchRecipe, ActionManageTask, ActionCheckPantry:
		query := data.Query
		if query == "" {
			query = data.Title
		}
		d.Query = &QueryPayload{Query: query}
	default:
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnrecognizedAction, wire.Action)
	}

	return d, nil
}

// stripFences removes a markdown code fence around a model reply. The
// service occasionally wraps its JSON in ```json ... ``` despite being
// asked not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
