package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/calendar-mentor/backend/internal/storage/models"
)

// The SQLite stores keep the exact semantics of the CSV stores: Load
// reads the whole table, Replace rewrites it in full inside one
// transaction. Row identifiers stay caller-assigned. The point of this
// backend is durability of the file format, not a different data model.

// SQLiteEventStore stores events in the events table.
type SQLiteEventStore struct {
	db *DB
}

// NewSQLiteEventStore creates an event store over the given database.
func NewSQLiteEventStore(db *DB) *SQLiteEventStore {
	return &SQLiteEventStore{db: db}
}

// Load reads all events.
func (s *SQLiteEventStore) Load(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, start_datetime, end_datetime, description, event_type,
		       color, is_all_day, recipe_id, location, attendees, recurring,
		       created_at, updated_at, name
		FROM events ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var (
			e          models.Event
			start, end string
			created    string
			updated    string
			allDay     int
		)
		if err := rows.Scan(&e.ID, &e.Title, &start, &end, &e.Description,
			&e.Category, &e.Color, &allDay, &e.RecipeID, &e.Location,
			&e.Attendees, &e.Recurring, &created, &updated, &e.Name); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.Start = models.ParseTimestamp(start)
		e.End = models.ParseTimestamp(end)
		e.CreatedAt = models.ParseTimestamp(created)
		e.UpdatedAt = models.ParseTimestamp(updated)
		e.AllDay = allDay != 0
		events = append(events, e)
	}
	return events, rows.Err()
}

// Replace rewrites the events table in full.
func (s *SQLiteEventStore) Replace(ctx context.Context, events []models.Event) error {
	err := s.db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM events"); err != nil {
			return err
		}
		for _, e := range events {
			allDay := 0
			if e.AllDay {
				allDay = 1
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO events (id, title, start_datetime, end_datetime, description,
					event_type, color, is_all_day, recipe_id, location, attendees,
					recurring, created_at, updated_at, name)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, e.ID, e.Title, models.FormatTimestamp(e.Start), models.FormatTimestamp(e.End),
				e.Description, string(e.Category), e.Color, allDay, e.RecipeID,
				e.Location, e.Attendees, e.Recurring,
				models.FormatTimestamp(e.CreatedAt), models.FormatTimestamp(e.UpdatedAt), e.Name)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &WriteError{Store: "event", Err: err}
	}
	return nil
}

// SQLiteTaskStore stores tasks in the tasks table.
type SQLiteTaskStore struct {
	db *DB
}

// NewSQLiteTaskStore creates a task store over the given database.
func NewSQLiteTaskStore(db *DB) *SQLiteTaskStore {
	return &SQLiteTaskStore{db: db}
}

// Load reads all tasks.
func (s *SQLiteTaskStore) Load(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nome, descrizione, stato, data_inizio, data_fine
		FROM tasks ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Status, &t.StartDate, &t.EndDate); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Replace rewrites the tasks table in full.
func (s *SQLiteTaskStore) Replace(ctx context.Context, tasks []models.Task) error {
	err := s.db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
			return err
		}
		for _, t := range tasks {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO tasks (id, nome, descrizione, stato, data_inizio, data_fine)
				VALUES (?, ?, ?, ?, ?, ?)
			`, t.ID, t.Name, t.Description, t.Status, t.StartDate, t.EndDate)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &WriteError{Store: "task", Err: err}
	}
	return nil
}

// SQLitePantryStore stores pantry items in the pantry table.
type SQLitePantryStore struct {
	db *DB
}

// NewSQLitePantryStore creates a pantry store over the given database.
func NewSQLitePantryStore(db *DB) *SQLitePantryStore {
	return &SQLitePantryStore{db: db}
}

// Load reads all pantry items.
func (s *SQLitePantryStore) Load(ctx context.Context) ([]models.PantryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, quantity, unit, category, expiration_date, min_quantity
		FROM pantry ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying pantry: %w", err)
	}
	defer rows.Close()

	items := []models.PantryItem{}
	for rows.Next() {
		var it models.PantryItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Quantity, &it.Unit, &it.Category,
			&it.ExpirationDate, &it.MinQuantity); err != nil {
			return nil, fmt.Errorf("scanning pantry item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Replace rewrites the pantry table in full.
func (s *SQLitePantryStore) Replace(ctx context.Context, items []models.PantryItem) error {
	err := s.db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM pantry"); err != nil {
			return err
		}
		for _, it := range items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO pantry (id, name, quantity, unit, category, expiration_date, min_quantity)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, it.ID, it.Name, it.Quantity, it.Unit, it.Category, it.ExpirationDate, it.MinQuantity)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &WriteError{Store: "pantry", Err: err}
	}
	return nil
}

// SQLiteRecipeStore stores recipes in the recipes table.
type SQLiteRecipeStore struct {
	db *DB
}

// NewSQLiteRecipeStore creates a recipe store over the given database.
func NewSQLiteRecipeStore(db *DB) *SQLiteRecipeStore {
	return &SQLiteRecipeStore{db: db}
}

// Load reads all saved recipes.
func (s *SQLiteRecipeStore) Load(ctx context.Context) ([]models.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, ingredients, instructions FROM recipes ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying recipes: %w", err)
	}
	defer rows.Close()

	recipes := []models.Recipe{}
	for rows.Next() {
		var r models.Recipe
		if err := rows.Scan(&r.ID, &r.Name, &r.Ingredients, &r.Instructions); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

// Replace rewrites the recipes table in full.
func (s *SQLiteRecipeStore) Replace(ctx context.Context, recipes []models.Recipe) error {
	err := s.db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM recipes"); err != nil {
			return err
		}
		for _, r := range recipes {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO recipes (id, name, ingredients, instructions) VALUES (?, ?, ?, ?)
			`, r.ID, r.Name, r.Ingredients, r.Instructions)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &WriteError{Store: "recipe", Err: err}
	}
	return nil
}

// SQLiteWellnessStore stores wellness entries in the wellness table.
type SQLiteWellnessStore struct {
	db *DB
}

// NewSQLiteWellnessStore creates a wellness store over the given database.
func NewSQLiteWellnessStore(db *DB) *SQLiteWellnessStore {
	return &SQLiteWellnessStore{db: db}
}

// Load reads all wellness entries.
func (s *SQLiteWellnessStore) Load(ctx context.Context) ([]models.WellnessEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data, umore, energia, stress, sonno_ore,
		       attivita_fisica_minuti, meditazione_minuti, note
		FROM wellness ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying wellness: %w", err)
	}
	defer rows.Close()

	entries := []models.WellnessEntry{}
	for rows.Next() {
		var e models.WellnessEntry
		if err := rows.Scan(&e.Date, &e.Mood, &e.Energy, &e.Stress, &e.SleepHours,
			&e.ExerciseMinutes, &e.MeditationMinutes, &e.Notes); err != nil {
			return nil, fmt.Errorf("scanning wellness entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Replace rewrites the wellness table in full.
func (s *SQLiteWellnessStore) Replace(ctx context.Context, entries []models.WellnessEntry) error {
	err := s.db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM wellness"); err != nil {
			return err
		}
		for _, e := range entries {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO wellness (data, umore, energia, stress, sonno_ore,
					attivita_fisica_minuti, meditazione_minuti, note)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, e.Date, e.Mood, e.Energy, e.Stress, e.SleepHours,
				e.ExerciseMinutes, e.MeditationMinutes, e.Notes)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &WriteError{Store: "wellness", Err: err}
	}
	return nil
}

// NewSQLiteStores builds the full store set over the given database.
func NewSQLiteStores(db *DB) *Stores {
	return &Stores{
		Events:   NewSQLiteEventStore(db),
		Tasks:    NewSQLiteTaskStore(db),
		Pantry:   NewSQLitePantryStore(db),
		Recipes:  NewSQLiteRecipeStore(db),
		Wellness: NewSQLiteWellnessStore(db),
	}
}
