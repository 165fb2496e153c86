package calendar

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/calendar-mentor/backend/internal/storage"
	"github.com/calendar-mentor/backend/internal/websocket"
)

// Announcer speaks a reminder out loud. Optional; a nil announcer means
// reminders are broadcast only.
type Announcer interface {
	CanRender() bool
	Render(ctx context.Context, text string) error
}

// ReminderScheduler scans the event table periodically and announces
// events that are about to start.
type ReminderScheduler struct {
	cron        *cron.Cron
	events      storage.EventStore
	broadcaster *websocket.EventBroadcaster
	announcer   Announcer

	// leadTime is how far ahead of the start an event counts as due.
	leadTime time.Duration

	// announced tracks instances already reminded, so each occurrence
	// fires once per process lifetime.
	announced   map[string]bool
	announcedMu sync.Mutex

	now func() time.Time
}

// NewReminderScheduler creates the scheduler. leadTimeMin defaults to
// 15 minutes when not positive.
func NewReminderScheduler(
	events storage.EventStore,
	broadcaster *websocket.EventBroadcaster,
	announcer Announcer,
	leadTimeMin int,
) *ReminderScheduler {
	if leadTimeMin <= 0 {
		leadTimeMin = 15
	}
	return &ReminderScheduler{
		cron:        cron.New(),
		events:      events,
		broadcaster: broadcaster,
		announcer:   announcer,
		leadTime:    time.Duration(leadTimeMin) * time.Minute,
		announced:   make(map[string]bool),
		now:         time.Now,
	}
}

// WithClock overrides the wall clock. Tests use it to pin scan times.
func (s *ReminderScheduler) WithClock(now func() time.Time) *ReminderScheduler {
	s.now = now
	return s
}

// Start begins the periodic scan.
func (s *ReminderScheduler) Start() error {
	log.Println("Starting reminder scheduler...")

	if _, err := s.cron.AddFunc("@every 1m", func() {
		s.Scan(context.Background())
	}); err != nil {
		return fmt.Errorf("scheduling reminder scan: %w", err)
	}

	s.cron.Start()
	log.Printf("Reminder scheduler started, lead time %s", s.leadTime)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *ReminderScheduler) Stop() {
	log.Println("Stopping reminder scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Reminder scheduler stopped")
}

// Scan loads the event table and fires reminders for occurrences whose
// start falls inside the lead window. Recurring events are expanded so
// every upcoming instance is caught.
func (s *ReminderScheduler) Scan(ctx context.Context) {
	now := s.now()

	events, err := s.events.Load(ctx)
	if err != nil {
		log.Printf("Reminder scan failed to load events: %v", err)
		return
	}

	occurrences, err := ExpandRange(events, now, now.Add(s.leadTime))
	if err != nil {
		log.Printf("Reminder scan failed to expand events: %v", err)
		return
	}

	for _, occ := range occurrences {
		if occ.Start.Before(now) {
			continue
		}
		if s.alreadyAnnounced(occ.InstanceKey) {
			continue
		}

		minutes := int(occ.Start.Sub(now).Round(time.Minute).Minutes())
		log.Printf("Reminder due: %q starts in %d minutes", occ.Event.Title, minutes)

		if s.broadcaster != nil {
			s.broadcaster.BroadcastReminderDue(occ.Event, minutes)
		}
		s.announce(ctx, occ, minutes)
		s.markAnnounced(occ.InstanceKey)
	}
}

func (s *ReminderScheduler) announce(ctx context.Context, occ Occurrence, minutes int) {
	if s.announcer == nil || !s.announcer.CanRender() {
		return
	}
	text := fmt.Sprintf("Promemoria: %s inizia tra %d minuti.", occ.Event.Title, minutes)
	if err := s.announcer.Render(ctx, text); err != nil {
		log.Printf("Failed to speak reminder for %q: %v", occ.Event.Title, err)
	}
}

func (s *ReminderScheduler) alreadyAnnounced(key string) bool {
	s.announcedMu.Lock()
	defer s.announcedMu.Unlock()
	return s.announced[key]
}

func (s *ReminderScheduler) markAnnounced(key string) {
	s.announcedMu.Lock()
	defer s.announcedMu.Unlock()
	s.announced[key] = true
}
