package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driving"
	"github.com/custodia-labs/clientdesk/internal/logger"
)

// Ensure CalendarService implements the interface.
var _ driving.CalendarService = (*CalendarService)(nil)

// CalendarService reads the owner's primary calendar.
type CalendarService struct {
	tokens driving.TokenService
	events driven.EventLister
}

// NewCalendarService creates a CalendarService.
func NewCalendarService(tokens driving.TokenService, events driven.EventLister) *CalendarService {
	return &CalendarService{tokens: tokens, events: events}
}

// ListEvents returns events in [timeMin, timeMax). When Google rejects the
// access token the token is refreshed and the call retried once.
func (s *CalendarService) ListEvents(
	ctx context.Context,
	ownerID string,
	timeMin, timeMax time.Time,
) ([]domain.CalendarEvent, error) {
	if err := domain.ValidateWindow(timeMin, timeMax); err != nil {
		return nil, err
	}

	cred, err := s.tokens.Valid(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	events, err := s.events.ListEvents(ctx, cred.AccessToken, domain.PrimaryCalendarID, timeMin, timeMax)
	if !errors.Is(err, domain.ErrProviderUnauthorized) {
		return events, err
	}

	logger.Debug("calendar rejected access token, refreshing", "owner_id", ownerID)
	cred, err = s.tokens.ForceRefresh(ctx, ownerID, cred)
	if err != nil {
		return nil, err
	}
	return s.events.ListEvents(ctx, cred.AccessToken, domain.PrimaryCalendarID, timeMin, timeMax)
}
