package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/calendar-mentor/backend/internal/storage/models"
)

// Default file names, matching the layout the data files have always had.
const (
	EventsFile   = "events.csv"
	TasksFile    = "progetti.csv"
	PantryFile   = "pantry.csv"
	RecipesFile  = "recipes.csv"
	WellnessFile = "wellness.csv"
)

// csvTable serializes access to one CSV file within this process. It
// does nothing about other processes touching the same file.
type csvTable struct {
	path   string
	header []string
	mu     sync.Mutex
}

// readRows loads all data rows from the file. A missing file returns
// (nil, os.ErrNotExist) so each store can decide how absence surfaces.
func (t *csvTable) readRows() ([][]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Open(t.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate short rows from older files

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(t.path), err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	// First row is the header, written on every rewrite.
	return records[1:], nil
}

// writeRows rewrites the entire file: header first, then every row.
func (t *csvTable) writeRows(rows [][]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Create(t.path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.header); err != nil {
		f.Close()
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// field returns column i of a row, or "" when the row is too short.
func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func atofOr(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

// parseBool accepts Go-style and Python-style boolean spellings.
func parseBool(s string) bool {
	switch s {
	case "true", "True", "TRUE", "1":
		return true
	}
	return false
}

// CSVEventStore stores events in events.csv.
type CSVEventStore struct {
	table csvTable
}

var eventHeader = []string{
	"id", "title", "start_datetime", "end_datetime", "description",
	"event_type", "color", "is_all_day", "recipe_id", "location",
	"attendees", "recurring", "created_at", "updated_at", "name",
}

// NewCSVEventStore creates an event store over events.csv in dir.
func NewCSVEventStore(dir string) *CSVEventStore {
	return &CSVEventStore{table: csvTable{
		path:   filepath.Join(dir, EventsFile),
		header: eventHeader,
	}}
}

// Load reads all events. A missing file is an empty table.
func (s *CSVEventStore) Load(ctx context.Context) ([]models.Event, error) {
	rows, err := s.table.readRows()
	if os.IsNotExist(err) {
		return []models.Event{}, nil
	}
	if err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, models.Event{
			ID:          atoiOr(field(row, 0), 0),
			Title:       field(row, 1),
			Start:       models.ParseTimestamp(field(row, 2)),
			End:         models.ParseTimestamp(field(row, 3)),
			Description: field(row, 4),
			Category:    models.EventCategory(field(row, 5)),
			Color:       field(row, 6),
			AllDay:      parseBool(field(row, 7)),
			RecipeID:    field(row, 8),
			Location:    field(row, 9),
			Attendees:   field(row, 10),
			Recurring:   field(row, 11),
			CreatedAt:   models.ParseTimestamp(field(row, 12)),
			UpdatedAt:   models.ParseTimestamp(field(row, 13)),
			Name:        field(row, 14),
		})
	}
	return events, nil
}

// Replace rewrites the whole file, header included.
func (s *CSVEventStore) Replace(ctx context.Context, events []models.Event) error {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			strconv.Itoa(e.ID),
			e.Title,
			models.FormatTimestamp(e.Start),
			models.FormatTimestamp(e.End),
			e.Description,
			string(e.Category),
			e.Color,
			strconv.FormatBool(e.AllDay),
			e.RecipeID,
			e.Location,
			e.Attendees,
			e.Recurring,
			models.FormatTimestamp(e.CreatedAt),
			models.FormatTimestamp(e.UpdatedAt),
			e.Name,
		})
	}
	if err := s.table.writeRows(rows); err != nil {
		return &WriteError{Store: "event", Err: err}
	}
	return nil
}

// CSVTaskStore stores tasks in progetti.csv.
type CSVTaskStore struct {
	table csvTable
}

var taskHeader = []string{"id", "Nome", "Descrizione", "Stato", "Data Inizio", "Data Fine"}

// NewCSVTaskStore creates a task store over progetti.csv in dir.
func NewCSVTaskStore(dir string) *CSVTaskStore {
	return &CSVTaskStore{table: csvTable{
		path:   filepath.Join(dir, TasksFile),
		header: taskHeader,
	}}
}

// Load reads all tasks. Unlike the event store, a missing file is an
// error the caller is expected to show to the user.
func (s *CSVTaskStore) Load(ctx context.Context) ([]models.Task, error) {
	rows, err := s.table.readRows()
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, TasksFile)
	}
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, models.Task{
			ID:          atoiOr(field(row, 0), 0),
			Name:        field(row, 1),
			Description: field(row, 2),
			Status:      field(row, 3),
			StartDate:   field(row, 4),
			EndDate:     field(row, 5),
		})
	}
	return tasks, nil
}

// Replace rewrites the whole file, header included.
func (s *CSVTaskStore) Replace(ctx context.Context, tasks []models.Task) error {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			t.Name,
			t.Description,
			t.Status,
			t.StartDate,
			t.EndDate,
		})
	}
	if err := s.table.writeRows(rows); err != nil {
		return &WriteError{Store: "task", Err: err}
	}
	return nil
}

// CSVPantryStore stores pantry items in pantry.csv.
type CSVPantryStore struct {
	table csvTable
}

var pantryHeader = []string{"id", "name", "quantity", "unit", "category", "expiration_date", "min_quantity"}

// NewCSVPantryStore creates a pantry store over pantry.csv in dir.
func NewCSVPantryStore(dir string) *CSVPantryStore {
	return &CSVPantryStore{table: csvTable{
		path:   filepath.Join(dir, PantryFile),
		header: pantryHeader,
	}}
}

// Load reads all pantry items. A missing file is an empty pantry.
func (s *CSVPantryStore) Load(ctx context.Context) ([]models.PantryItem, error) {
	rows, err := s.table.readRows()
	if os.IsNotExist(err) {
		return []models.PantryItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	items := make([]models.PantryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.PantryItem{
			ID:             atoiOr(field(row, 0), 0),
			Name:           field(row, 1),
			Quantity:       atofOr(field(row, 2), 0),
			Unit:           field(row, 3),
			Category:       field(row, 4),
			ExpirationDate: field(row, 5),
			MinQuantity:    atofOr(field(row, 6), 0),
		})
	}
	return items, nil
}

// Replace rewrites the whole file, header included.
func (s *CSVPantryStore) Replace(ctx context.Context, items []models.PantryItem) error {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			strconv.Itoa(it.ID),
			it.Name,
			strconv.FormatFloat(it.Quantity, 'f', -1, 64),
			it.Unit,
			it.Category,
			it.ExpirationDate,
			strconv.FormatFloat(it.MinQuantity, 'f', -1, 64),
		})
	}
	if err := s.table.writeRows(rows); err != nil {
		return &WriteError{Store: "pantry", Err: err}
	}
	return nil
}

// CSVRecipeStore stores recipes in recipes.csv.
type CSVRecipeStore struct {
	table csvTable
}

var recipeHeader = []string{"id", "name", "ingredients", "instructions"}

// NewCSVRecipeStore creates a recipe store over recipes.csv in dir.
func NewCSVRecipeStore(dir string) *CSVRecipeStore {
	return &CSVRecipeStore{table: csvTable{
		path:   filepath.Join(dir, RecipesFile),
		header: recipeHeader,
	}}
}

// Load reads all saved recipes. A missing file is an empty collection.
func (s *CSVRecipeStore) Load(ctx context.Context) ([]models.Recipe, error) {
	rows, err := s.table.readRows()
	if os.IsNotExist(err) {
		return []models.Recipe{}, nil
	}
	if err != nil {
		return nil, err
	}

	recipes := make([]models.Recipe, 0, len(rows))
	for _, row := range rows {
		recipes = append(recipes, models.Recipe{
			ID:           atoiOr(field(row, 0), 0),
			Name:         field(row, 1),
			Ingredients:  field(row, 2),
			Instructions: field(row, 3),
		})
	}
	return recipes, nil
}

// Replace rewrites the whole file, header included.
func (s *CSVRecipeStore) Replace(ctx context.Context, recipes []models.Recipe) error {
	rows := make([][]string, 0, len(recipes))
	for _, r := range recipes {
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			r.Name,
			r.Ingredients,
			r.Instructions,
		})
	}
	if err := s.table.writeRows(rows); err != nil {
		return &WriteError{Store: "recipe", Err: err}
	}
	return nil
}

// CSVWellnessStore stores wellness entries in wellness.csv.
type CSVWellnessStore struct {
	table csvTable
}

var wellnessHeader = []string{
	"data", "umore", "energia", "stress", "sonno_ore",
	"attivita_fisica_minuti", "meditazione_minuti", "note",
}

// NewCSVWellnessStore creates a wellness store over wellness.csv in dir.
func NewCSVWellnessStore(dir string) *CSVWellnessStore {
	return &CSVWellnessStore{table: csvTable{
		path:   filepath.Join(dir, WellnessFile),
		header: wellnessHeader,
	}}
}

// Load reads all wellness entries. A missing file is an empty log.
func (s *CSVWellnessStore) Load(ctx context.Context) ([]models.WellnessEntry, error) {
	rows, err := s.table.readRows()
	if os.IsNotExist(err) {
		return []models.WellnessEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	entries := make([]models.WellnessEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.WellnessEntry{
			Date:              field(row, 0),
			Mood:              atoiOr(field(row, 1), 0),
			Energy:            atoiOr(field(row, 2), 0),
			Stress:            atoiOr(field(row, 3), 0),
			SleepHours:        atofOr(field(row, 4), 0),
			ExerciseMinutes:   atoiOr(field(row, 5), 0),
			MeditationMinutes: atoiOr(field(row, 6), 0),
			Notes:             field(row, 7),
		})
	}
	return entries, nil
}

// Replace rewrites the whole file, header included.
func (s *CSVWellnessStore) Replace(ctx context.Context, entries []models.WellnessEntry) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Date,
			strconv.Itoa(e.Mood),
			strconv.Itoa(e.Energy),
			strconv.Itoa(e.Stress),
			strconv.FormatFloat(e.SleepHours, 'f', -1, 64),
			strconv.Itoa(e.ExerciseMinutes),
			strconv.Itoa(e.MeditationMinutes),
			e.Notes,
		})
	}
	if err := s.table.writeRows(rows); err != nil {
		return &WriteError{Store: "wellness", Err: err}
	}
	return nil
}

// NewCSVStores builds the full store set over CSV files in dir.
func NewCSVStores(dir string) *Stores {
	return &Stores{
		Events:   NewCSVEventStore(dir),
		Tasks:    NewCSVTaskStore(dir),
		Pantry:   NewCSVPantryStore(dir),
		Recipes:  NewCSVRecipeStore(dir),
		Wellness: NewCSVWellnessStore(dir),
	}
}
