package domain

import (
	"fmt"
	"time"
)

// DefaultEventTitle is used for events without a summary.
const DefaultEventTitle = "No title"

// PrimaryCalendarID is the calendar read for every owner.
const PrimaryCalendarID = "primary"

// CalendarEvent is a normalised Google Calendar entry.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    *string   `json:"location"`
	// AllDay is true when the provider gave dates rather than instants.
	AllDay bool `json:"all_day"`
}

// Period names a predefined calendar window.
type Period string

// Supported periods.
const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// WindowForPeriod returns the [min, max) window for p relative to now.
// Weeks start on Sunday. Any other value yields start of today to one year later.
func WindowForPeriod(p Period, now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch p {
	case PeriodToday:
		return today, today.AddDate(0, 0, 1)
	case PeriodWeek:
		start := today.AddDate(0, 0, -int(today.Weekday()))
		return start, start.AddDate(0, 0, 7)
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0)
	default:
		return today, today.AddDate(1, 0, 0)
	}
}

// ValidateWindow checks that min is strictly before max.
func ValidateWindow(minTime, maxTime time.Time) error {
	if !minTime.Before(maxTime) {
		v := NewValidationError()
		v.Add("timeMin", fmt.Sprintf("must be before timeMax (%s)", maxTime.Format(time.RFC3339)))
		return v
	}
	return nil
}
