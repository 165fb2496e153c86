package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/calendar-mentor/backend/internal/storage"
	"github.com/calendar-mentor/backend/internal/storage/models"
	"github.com/calendar-mentor/backend/internal/websocket"
)

// Default times used when the service omits them.
const (
	defaultStartTime = "09:00"
	defaultEndTime   = "10:00"
)

// Dispatcher maps a parsed Descriptor to exactly the store operation
// its kind denotes. Dispatch is synchronous and single-attempt: one
// store read-then-rewrite per successful mutation, nothing rolled back
// on later failures.
type Dispatcher struct {
	stores      *storage.Stores
	broadcaster *websocket.EventBroadcaster
	now         func() time.Time
}

// NewDispatcher creates a Dispatcher over the given stores. The
// broadcaster may be nil; then no live updates are emitted.
func NewDispatcher(stores *storage.Stores, broadcaster *websocket.EventBroadcaster) *Dispatcher {
	return &Dispatcher{
		stores:      stores,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// WithClock overrides the wall clock. Tests use it to pin timestamps.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Dispatch performs the store operation for the descriptor and returns
// the response text to give the user. A store write failure aborts with
// the error; the caller must not report success.
func (d *Dispatcher) Dispatch(ctx context.Context, desc Descriptor) (string, error) {
	switch desc.Kind {
	case ActionAddEvent, ActionAddTask:
		if err := d.addEvent(ctx, *desc.Event, desc.Kind); err != nil {
			return "", err
		}
		return desc.Response, nil

	case ActionDeleteTask:
		if err := d.deleteTask(ctx, desc.Task.Title); err != nil {
			return "", err
		}
		return desc.Response, nil

	case ActionSearchRecipe:
		return d.searchRecipes(ctx, desc)

	case ActionCheckPantry:
		return d.checkPantry(ctx, desc)

	case ActionManageTask:
		// Read-only here: the task chat endpoint owns task mutations.
		return desc.Response, nil

	default:
		// ParseDescriptor fails closed, so this is unreachable through
		// the normal pipeline. Answer the fixed message anyway.
		return UnrecognizedResponse, nil
	}
}

// addEvent appends a new Event built from the payload. The identifier
// is the current row count plus one; there is no delete-event
// operation, so counts only grow and identifiers never collide.
func (d *Dispatcher) addEvent(ctx context.Context, payload EventPayload, kind ActionKind) error {
	events, err := d.stores.Events.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}

	date := payload.Date
	if date == "" {
		date = d.now().Format(dateLayout)
	}
	startTime := payload.Time
	if startTime == "" {
		startTime = defaultStartTime
	}
	endTime := payload.EndTime
	if endTime == "" {
		endTime = shiftTime(startTime, defaultStartTime, defaultEndTime)
	}

	category := models.EventCategory(payload.EventType)
	if !category.Valid() {
		if kind == ActionAddTask {
			category = models.CategoryTask
		} else {
			category = models.CategoryGeneral
		}
	}

	now := d.now()
	event := models.Event{
		ID:          len(events) + 1,
		Title:       payload.Title,
		Start:       models.ParseTimestamp(date + " " + startTime),
		End:         models.ParseTimestamp(date + " " + endTime),
		Description: payload.Description,
		Category:    category,
		Color:       category.Color(),
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}

	events = append(events, event)
	sortEventsByStart(events)

	if err := d.stores.Events.Replace(ctx, events); err != nil {
		return err
	}

	if d.broadcaster != nil {
		d.broadcaster.BroadcastEventCreated(event, "assistant")
	}
	return nil
}

// deleteTask removes every task whose name equals title and rewrites
// the store. A title that matches nothing still succeeds: the rewrite
// happens with the table unchanged. Deliberate idempotence.
func (d *Dispatcher) deleteTask(ctx context.Context, title string) error {
	tasks, err := d.stores.Tasks.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}

	kept := tasks[:0]
	for _, t := range tasks {
		if t.Name != title {
			kept = append(kept, t)
		}
	}

	if err := d.stores.Tasks.Replace(ctx, kept); err != nil {
		return err
	}

	if d.broadcaster != nil {
		d.broadcaster.BroadcastTaskChanged("deleted", title, "")
	}
	return nil
}

// searchRecipes consults the saved recipes for matches against the
// query. Read-only: no store mutation.
func (d *Dispatcher) searchRecipes(ctx context.Context, desc Descriptor) (string, error) {
	recipes, err := d.stores.Recipes.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("loading recipes: %w", err)
	}

	query := strings.ToLower(desc.Query.Query)
	var matches []string
	for _, r := range recipes {
		if query != "" && (strings.Contains(strings.ToLower(r.Name), query) ||
			strings.Contains(strings.ToLower(r.Ingredients), query)) {
			matches = append(matches, r.Name)
		}
	}

	if len(matches) == 0 {
		return desc.Response, nil
	}
	return fmt.Sprintf("%s Ricette salvate trovate: %s.", desc.Response, strings.Join(matches, ", ")), nil
}

// checkPantry summarizes the pantry contents. Read-only.
func (d *Dispatcher) checkPantry(ctx context.Context, desc Descriptor) (string, error) {
	items, err := d.stores.Pantry.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("loading pantry: %w", err)
	}

	if len(items) == 0 {
		return "La dispensa è vuota.", nil
	}

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return fmt.Sprintf("In dispensa ci sono %d prodotti: %s.", len(items), strings.Join(names, ", ")), nil
}

// sortEventsByStart orders events by start timestamp, rows without a
// parseable start last. The file has always been kept sorted this way.
func sortEventsByStart(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].Start, events[j].Start
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})
}

// shiftTime moves t forward by the difference between defFrom and
// defTo (one hour for the standard defaults). Unparseable times fall
// back to defTo.
func shiftTime(t, defFrom, defTo string) string {
	from, err1 := time.Parse("15:04", defFrom)
	to, err2 := time.Parse("15:04", defTo)
	start, err3 := time.Parse("15:04", t)
	if err1 != nil || err2 != nil || err3 != nil {
		return defTo
	}
	return start.Add(to.Sub(from)).Format("15:04")
}
