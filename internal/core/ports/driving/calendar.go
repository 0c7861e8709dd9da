package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// CalendarService reads the owner's primary Google Calendar.
type CalendarService interface {
	// ListEvents returns events in [timeMin, timeMax) ordered by start.
	ListEvents(ctx context.Context, ownerID string, timeMin, timeMax time.Time) ([]domain.CalendarEvent, error)
}
