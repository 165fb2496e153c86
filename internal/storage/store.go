// Package storage provides flat-file and SQLite data access for the
// application stores.
//
// Every store follows the same contract: Load reads the whole table
// fresh, Replace rewrites it in full. There is no partial update and no
// cross-process locking; concurrent writers race on the full rewrite and
// the last one wins. This is a known limitation carried over from the
// store design, not an oversight.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/calendar-mentor/backend/internal/storage/models"
)

// ErrFileNotFound is returned by stores whose backing file must exist.
// The task store reports a missing file to the user; the event store
// treats a missing file as an empty table. The asymmetry is deliberate.
var ErrFileNotFound = errors.New("storage: file not found")

// WriteError wraps a failure to rewrite a store. Dispatch aborts with a
// generic error message when it sees one; it never fabricates success.
type WriteError struct {
	Store string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("storage: writing %s store: %v", e.Store, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// EventStore holds calendar events.
type EventStore interface {
	Load(ctx context.Context) ([]models.Event, error)
	Replace(ctx context.Context, events []models.Event) error
}

// TaskStore holds project/todo rows.
type TaskStore interface {
	Load(ctx context.Context) ([]models.Task, error)
	Replace(ctx context.Context, tasks []models.Task) error
}

// PantryStore holds pantry product rows.
type PantryStore interface {
	Load(ctx context.Context) ([]models.PantryItem, error)
	Replace(ctx context.Context, items []models.PantryItem) error
}

// RecipeStore holds saved recipes.
type RecipeStore interface {
	Load(ctx context.Context) ([]models.Recipe, error)
	Replace(ctx context.Context, recipes []models.Recipe) error
}

// WellnessStore holds daily wellness log rows.
type WellnessStore interface {
	Load(ctx context.Context) ([]models.WellnessEntry, error)
	Replace(ctx context.Context, entries []models.WellnessEntry) error
}

// Stores bundles every application store behind one handle.
type Stores struct {
	Events   EventStore
	Tasks    TaskStore
	Pantry   PantryStore
	Recipes  RecipeStore
	Wellness WellnessStore
}
