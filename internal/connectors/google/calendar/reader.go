// Package calendar reads events from Google Calendar.
package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	"google.golang.org/api/option"

	"github.com/custodia-labs/clientdesk/internal/connectors/google"
	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
)

// pageSize is the maximum events.list page Google allows.
const pageSize = 2500

// Ensure Reader implements the interface.
var _ driven.EventLister = (*Reader)(nil)

// Reader implements driven.EventLister with events.list.
type Reader struct {
	limiter *google.RateLimiter
	loc     *time.Location
	opts    []option.ClientOption
}

// NewReader creates a Reader. loc is used for all-day events; nil means UTC.
// A nil limiter uses the Calendar defaults.
func NewReader(limiter *google.RateLimiter, loc *time.Location, opts ...option.ClientOption) *Reader {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.ServiceCalendar)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Reader{limiter: limiter, loc: loc, opts: opts}
}

// ListEvents returns single events in [timeMin, timeMax) ordered by start.
// Recurring events are expanded into instances and every page is read.
func (r *Reader) ListEvents(
	ctx context.Context,
	accessToken, calendarID string,
	timeMin, timeMax time.Time,
) ([]domain.CalendarEvent, error) {
	svc, err := google.NewCalendarService(ctx, accessToken, r.opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	call := svc.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		MaxResults(pageSize).
		Context(ctx)

	events := make([]domain.CalendarEvent, 0)
	pageToken := ""
	for {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("calendar rate limiter: %w", err)
		}
		if pageToken != "" {
			call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			if google.IsRateLimited(err) {
				r.limiter.RecordRateLimitError(google.RetryAfter(err))
			}
			return nil, google.WrapError(err)
		}

		for _, item := range resp.Items {
			if item == nil {
				continue
			}
			ev, err := ToDomainEvent(item, r.loc)
			if err != nil {
				return nil, err
			}
			events = append(events, ev)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}
