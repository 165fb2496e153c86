// Package calendar provides recurrence expansion and ICS feed export for
// the event table.
package calendar

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/calendar-mentor/backend/internal/storage/models"
)

// maxOccurrencesPerEvent caps expansion of a single recurring event so a
// malformed rule cannot blow up a range query.
const maxOccurrencesPerEvent = 1000

// Occurrence is one concrete instance of an event within a queried
// range. Non-recurring events produce at most one; recurring events one
// per rule hit.
type Occurrence struct {
	Event models.Event `json:"event"`
	Start time.Time    `json:"start"`
	End   time.Time    `json:"end"`

	// InstanceKey distinguishes occurrences of the same recurring event.
	InstanceKey string `json:"instance_key"`
}

// ExpandRange expands the given events into concrete occurrences inside
// [from, to]. Events without a parseable start are skipped: they cannot
// be placed on a timeline. A recurring event with an unparseable rule
// degrades to its single base occurrence.
func ExpandRange(events []models.Event, from, to time.Time) ([]Occurrence, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("calendar: range end %s before start %s",
			to.Format(models.TimestampLayout), from.Format(models.TimestampLayout))
	}

	occurrences := make([]Occurrence, 0)
	for _, event := range events {
		if event.Start == nil {
			continue
		}
		if event.Recurring == "" {
			if occ, ok := singleOccurrence(event, from, to); ok {
				occurrences = append(occurrences, occ)
			}
			continue
		}
		occurrences = append(occurrences, recurringOccurrences(event, from, to)...)
	}

	sort.Slice(occurrences, func(i, j int) bool {
		return occurrences[i].Start.Before(occurrences[j].Start)
	})
	return occurrences, nil
}

func singleOccurrence(event models.Event, from, to time.Time) (Occurrence, bool) {
	start := *event.Start
	end := eventEnd(event, start)
	if end.Before(from) || start.After(to) {
		return Occurrence{}, false
	}
	return makeOccurrence(event, start, end), true
}

func recurringOccurrences(event models.Event, from, to time.Time) []Occurrence {
	rule, err := rrule.StrToRRule(event.Recurring)
	if err != nil {
		log.Printf("Unparseable recurrence rule on event %d, treating as single: %v", event.ID, err)
		if occ, ok := singleOccurrence(event, from, to); ok {
			return []Occurrence{occ}
		}
		return nil
	}
	rule.DTStart(*event.Start)

	var set rrule.Set
	set.RRule(rule)

	starts := set.Between(from, to, true)
	if len(starts) > maxOccurrencesPerEvent {
		log.Printf("Truncated occurrences for event %d at %d", event.ID, maxOccurrencesPerEvent)
		starts = starts[:maxOccurrencesPerEvent]
	}

	duration := eventEnd(event, *event.Start).Sub(*event.Start)
	out := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		if event.AllDay {
			start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			out = append(out, makeOccurrence(event, start, start.Add(24*time.Hour)))
			continue
		}
		out = append(out, makeOccurrence(event, start, start.Add(duration)))
	}
	return out
}

// eventEnd resolves the end of an event instance. Events stored without
// an end run for one hour, matching the default entry window.
func eventEnd(event models.Event, start time.Time) time.Time {
	if event.End != nil && event.End.After(start) {
		return start.Add(event.End.Sub(*event.Start))
	}
	return start.Add(time.Hour)
}

func makeOccurrence(event models.Event, start, end time.Time) Occurrence {
	return Occurrence{
		Event:       event,
		Start:       start,
		End:         end,
		InstanceKey: fmt.Sprintf("%d-%s", event.ID, start.Format(time.RFC3339)),
	}
}
