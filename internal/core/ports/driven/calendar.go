package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// EventLister reads events from a calendar provider.
type EventLister interface {
	// ListEvents returns normalised single events in [timeMin, timeMax)
	// ordered by start. An authorization rejection wraps
	// domain.ErrProviderUnauthorized.
	ListEvents(
		ctx context.Context,
		accessToken, calendarID string,
		timeMin, timeMax time.Time,
	) ([]domain.CalendarEvent, error)
}
