package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/calendar-mentor/backend/internal/storage/models"
)

func TestCSVEventStoreMissingFileIsEmptyTable(t *testing.T) {
	store := NewCSVEventStore(t.TempDir())

	events, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected empty table, got %d rows", len(events))
	}
}

func TestCSVEventStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewCSVEventStore(dir)
	ctx := context.Background()

	start := time.Date(2025, 3, 16, 9, 0, 0, 0, time.Local)
	end := start.Add(time.Hour)
	in := models.Event{
		ID:          1,
		Title:       "Comprare il latte",
		Start:       &start,
		End:         &end,
		Description: "Lista della spesa: latte",
		Category:    models.CategoryTask,
		Color:       models.CategoryTask.Color(),
		Location:    "Supermercato",
	}
	if err := store.Replace(ctx, []models.Event{in}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	events, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.Title != in.Title {
		t.Errorf("title = %q, want %q", got.Title, in.Title)
	}
	if got.Category != models.CategoryTask {
		t.Errorf("category = %q, want %q", got.Category, models.CategoryTask)
	}
	if got.Start == nil || !got.Start.Equal(start) {
		t.Errorf("start = %v, want %v", got.Start, start)
	}
	if got.AllDay {
		t.Errorf("all_day = true, want false")
	}
}

func TestCSVEventStoreWritesHeaderOnEveryRewrite(t *testing.T) {
	dir := t.TempDir()
	store := NewCSVEventStore(dir)
	ctx := context.Background()

	if err := store.Replace(ctx, nil); err != nil {
		t.Fatalf("replace: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, EventsFile))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected header row only, got %d rows", len(records))
	}
	if records[0][1] != "title" || records[0][5] != "event_type" {
		t.Fatalf("unexpected header: %v", records[0])
	}
}

func TestCSVEventStoreCoercesUnparseableTimestamps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, EventsFile)
	content := "id,title,start_datetime,end_datetime,description,event_type,color,is_all_day,recipe_id,location,attendees,recurring,created_at,updated_at,name\n" +
		"1,Check-up,non-una-data,2025-03-16 10:00,,general,#039BE5,False,,,,,,,\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	events, err := NewCSVEventStore(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Start != nil {
		t.Errorf("unparseable start should load as nil, got %v", events[0].Start)
	}
	if events[0].End == nil {
		t.Errorf("valid end should parse, got nil")
	}
}

func TestCSVTaskStoreMissingFileSurfacesError(t *testing.T) {
	store := NewCSVTaskStore(t.TempDir())

	_, err := store.Load(context.Background())
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestCSVTaskStoreRoundTrip(t *testing.T) {
	store := NewCSVTaskStore(t.TempDir())
	ctx := context.Background()

	tasks := []models.Task{
		{ID: 1, Name: "Progetto Website", Status: models.TaskStatusInProgress},
		{ID: 2, Name: "Report Mensile", Status: models.TaskStatusNotStarted, Description: "da consegnare"},
	}
	if err := store.Replace(ctx, tasks); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	if got[0].Name != "Progetto Website" || got[0].Status != models.TaskStatusInProgress {
		t.Errorf("unexpected first task: %+v", got[0])
	}
	if got[1].Description != "da consegnare" {
		t.Errorf("unexpected second task: %+v", got[1])
	}
}

func TestCSVPantryStoreRoundTrip(t *testing.T) {
	store := NewCSVPantryStore(t.TempDir())
	ctx := context.Background()

	items := []models.PantryItem{
		{ID: 1, Name: "Latte", Quantity: 1.5, Unit: "l", Category: "Frigo", ExpirationDate: "2025-03-20", MinQuantity: 1},
	}
	if err := store.Replace(ctx, items); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Latte" || got[0].Quantity != 1.5 {
		t.Fatalf("unexpected pantry rows: %+v", got)
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	cases := []struct {
		in   string
		want string // empty means nil expected
	}{
		{"2025-03-16 09:00", "2025-03-16 09:00"},
		{"2025-03-16 09:00:30", "2025-03-16 09:00"},
		{"2025-03-16", "2025-03-16 00:00"},
		{"", ""},
		{"domani", ""},
	}
	for _, tc := range cases {
		got := models.ParseTimestamp(tc.in)
		if tc.want == "" {
			if got != nil {
				t.Errorf("ParseTimestamp(%q) = %v, want nil", tc.in, got)
			}
			continue
		}
		if got == nil {
			t.Errorf("ParseTimestamp(%q) = nil, want %q", tc.in, tc.want)
			continue
		}
		if formatted := models.FormatTimestamp(got); formatted != tc.want {
			t.Errorf("ParseTimestamp(%q) = %q, want %q", tc.in, formatted, tc.want)
		}
	}
}
