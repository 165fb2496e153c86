package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

const feedProductID = "-//Calendar Mentor//Backend//IT"

// BuildFeed renders occurrences as an ICS calendar so external clients
// can subscribe to the event table.
func BuildFeed(occurrences []Occurrence, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(feedProductID)

	for _, occ := range occurrences {
		vevent := cal.AddEvent(feedUID(occ))
		vevent.SetDtStampTime(now)
		vevent.SetSummary(occ.Event.Title)
		if occ.Event.Description != "" {
			vevent.SetDescription(occ.Event.Description)
		}
		if occ.Event.Location != "" {
			vevent.SetLocation(occ.Event.Location)
		}

		if occ.Event.AllDay {
			vevent.SetAllDayStartAt(occ.Start)
			vevent.SetAllDayEndAt(occ.End)
		} else {
			vevent.SetStartAt(occ.Start)
			vevent.SetEndAt(occ.End)
		}

		if occ.Event.CreatedAt != nil {
			vevent.SetCreatedTime(*occ.Event.CreatedAt)
		}
		if occ.Event.UpdatedAt != nil {
			vevent.SetModifiedAt(*occ.Event.UpdatedAt)
		}
	}

	return cal.Serialize()
}

// feedUID builds a stable per-instance identifier for the feed.
func feedUID(occ Occurrence) string {
	return fmt.Sprintf("%s@calendar-mentor", occ.InstanceKey)
}

// FeedRange is the default window exported by the feed endpoint: one
// month back, six months forward.
func FeedRange(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, -1, 0), now.AddDate(0, 6, 0)
}
