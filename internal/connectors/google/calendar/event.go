package calendar

import (
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// allDayLayout is the format of EventDateTime.Date.
const allDayLayout = "2006-01-02"

// ToDomainEvent normalises a Google Calendar event.
// All-day dates are interpreted as midnight in loc.
func ToDomainEvent(event *calendar.Event, loc *time.Location) (domain.CalendarEvent, error) {
	if loc == nil {
		loc = time.UTC
	}

	start, allDay, err := extractEventTime(event.Start, loc)
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("event %s start: %w", event.Id, err)
	}
	end, _, err := extractEventTime(event.End, loc)
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("event %s end: %w", event.Id, err)
	}

	title := event.Summary
	if title == "" {
		title = domain.DefaultEventTitle
	}

	return domain.CalendarEvent{
		ID:          event.Id,
		Title:       title,
		Description: optional(event.Description),
		Start:       start,
		End:         end,
		Location:    optional(event.Location),
		AllDay:      allDay,
	}, nil
}

// extractEventTime prefers the timed value and falls back to the all-day date.
// A missing value yields the zero time.
func extractEventTime(dt *calendar.EventDateTime, loc *time.Location) (time.Time, bool, error) {
	switch {
	case dt == nil:
		return time.Time{}, false, nil
	case dt.DateTime != "":
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		return t, false, err
	case dt.Date != "":
		t, err := time.ParseInLocation(allDayLayout, dt.Date, loc)
		return t, true, err
	default:
		return time.Time{}, false, nil
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
