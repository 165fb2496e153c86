package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/calendar-mentor/backend/internal/assistant"
	"github.com/calendar-mentor/backend/internal/storage"
	"github.com/calendar-mentor/backend/internal/storage/models"
)

type fakeChat struct {
	reply      string
	err        error
	configured bool
}

func (f *fakeChat) Configured() bool { return f.configured }

func (f *fakeChat) Chat(ctx context.Context, system, user string) (string, error) {
	return f.reply, f.err
}

func (f *fakeChat) ChatJSON(ctx context.Context, system, user string) (string, error) {
	return f.reply, f.err
}

func newTestStores(t *testing.T) *storage.Stores {
	t.Helper()
	return storage.NewCSVStores(t.TempDir())
}

func TestHealthCheck(t *testing.T) {
	stores := newTestStores(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	HealthCheck(stores)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var response HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Status != "healthy" || !response.StorageReachable {
		t.Errorf("Unexpected health response: %+v", response)
	}
}

func TestCreateAndListEvents(t *testing.T) {
	stores := newTestStores(t)
	dispatcher := assistant.NewDispatcher(stores, nil)

	body := `{"title":"Riunione","date":"2025-03-20","time":"11:00","event_type":"meeting"}`
	req := httptest.NewRequest("POST", "/api/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	CreateEvent(dispatcher, stores)(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created models.Event
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if created.ID != 1 || created.Title != "Riunione" {
		t.Errorf("Unexpected created event: %+v", created)
	}
	if created.Category != models.CategoryMeeting {
		t.Errorf("Expected meeting category, got %s", created.Category)
	}

	listReq := httptest.NewRequest("GET", "/api/events", nil)
	listRec := httptest.NewRecorder()
	ListEvents(stores)(listRec, listReq)

	var events []models.Event
	if err := json.NewDecoder(listRec.Body).Decode(&events); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Expected 1 event, got %d", len(events))
	}
}

func TestListEventsWithRangeExpandsRecurrence(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	start := models.ParseTimestamp("2025-03-01 08:00")
	end := models.ParseTimestamp("2025-03-01 08:30")
	seed := []models.Event{{ID: 1, Title: "Meditazione", Start: start, End: end, Recurring: "FREQ=DAILY"}}
	if err := stores.Events.Replace(ctx, seed); err != nil {
		t.Fatalf("Failed to seed events: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/events?from=2025-03-10&to=2025-03-12", nil)
	rec := httptest.NewRecorder()
	ListEvents(stores)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var occurrences []json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&occurrences); err != nil {
		t.Fatalf("Failed to decode occurrences: %v", err)
	}
	if len(occurrences) != 3 {
		t.Errorf("Expected 3 occurrences, got %d", len(occurrences))
	}
}

func TestListEventsRejectsBadRange(t *testing.T) {
	stores := newTestStores(t)

	req := httptest.NewRequest("GET", "/api/events?from=definitely-not-a-date", nil)
	rec := httptest.NewRecorder()
	ListEvents(stores)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestEventsFeed(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	// An event a few days out so it lands inside the feed window.
	start := models.ParseTimestamp(nowPlusDays(t, 3) + " 20:00")
	end := models.ParseTimestamp(nowPlusDays(t, 3) + " 22:00")
	seed := []models.Event{{ID: 1, Title: "Cena", Start: start, End: end}}
	if err := stores.Events.Replace(ctx, seed); err != nil {
		t.Fatalf("Failed to seed events: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/events/feed.ics", nil)
	rec := httptest.NewRecorder()
	EventsFeed(stores)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Unexpected content type: %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "SUMMARY:Cena") {
		t.Errorf("Feed missing event:\n%s", rec.Body.String())
	}
}

func TestListTasksMissingFile(t *testing.T) {
	stores := newTestStores(t)

	req := httptest.NewRequest("GET", "/api/tasks", nil)
	rec := httptest.NewRecorder()
	ListTasks(stores)(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing task file, got %d", rec.Code)
	}
}

func TestDeleteTaskByID(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	seed := []models.Task{
		{ID: 1, Name: "Spesa", Status: models.TaskStatusNotStarted},
		{ID: 2, Name: "Bolletta", Status: models.TaskStatusInProgress},
	}
	if err := stores.Tasks.Replace(ctx, seed); err != nil {
		t.Fatalf("Failed to seed tasks: %v", err)
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/tasks/{id}", DeleteTask(stores, nil)).Methods("DELETE")

	req := httptest.NewRequest("DELETE", "/api/tasks/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}

	tasks, _ := stores.Tasks.Load(ctx)
	if len(tasks) != 1 || tasks[0].Name != "Bolletta" {
		t.Errorf("Expected only Bolletta to remain, got %+v", tasks)
	}
}

func TestChatUnconfigured(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"message":"ciao"}`))
	rec := httptest.NewRecorder()
	Chat(&fakeChat{configured: false})(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var response CommandResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Response != assistant.ChatUnavailableResponse {
		t.Errorf("Expected unavailable message, got %s", response.Response)
	}
}

func TestChatRelay(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"message":"ciao"}`))
	rec := httptest.NewRecorder()
	Chat(&fakeChat{configured: true, reply: "Ciao! Come posso aiutarti?"})(rec, req)

	var response CommandResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Response != "Ciao! Come posso aiutarti?" {
		t.Errorf("Unexpected reply: %s", response.Response)
	}
}

func TestExpiringPantry(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	seed := []models.PantryItem{
		{ID: 1, Name: "Latte", Quantity: 1, ExpirationDate: nowPlusDays(t, 2)},
		{ID: 2, Name: "Pasta", Quantity: 1, MinQuantity: 3},
		{ID: 3, Name: "Sale", Quantity: 5, ExpirationDate: nowPlusDays(t, 60)},
	}
	if err := stores.Pantry.Replace(ctx, seed); err != nil {
		t.Fatalf("Failed to seed pantry: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/pantry/expiring", nil)
	rec := httptest.NewRecorder()
	ExpiringPantry(stores)(rec, req)

	var response ExpiringResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Expiring) != 1 || response.Expiring[0].Name != "Latte" {
		t.Errorf("Unexpected expiring list: %+v", response.Expiring)
	}
	if len(response.Low) != 1 || response.Low[0].Name != "Pasta" {
		t.Errorf("Unexpected low list: %+v", response.Low)
	}
}

func TestCreateWellnessReplacesSameDay(t *testing.T) {
	stores := newTestStores(t)

	first := `{"data":"2025-03-15","umore":3,"energia":2}`
	second := `{"data":"2025-03-15","umore":5,"energia":4}`
	for _, body := range []string{first, second} {
		req := httptest.NewRequest("POST", "/api/wellness", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CreateWellness(stores)(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", rec.Code)
		}
	}

	entries, err := stores.Wellness.Load(context.Background())
	if err != nil {
		t.Fatalf("Failed to load wellness log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected one row per day, got %d", len(entries))
	}
	if entries[0].Mood != 5 {
		t.Errorf("Expected latest entry kept, got mood %d", entries[0].Mood)
	}
}

func nowPlusDays(t *testing.T, days int) string {
	t.Helper()
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}
