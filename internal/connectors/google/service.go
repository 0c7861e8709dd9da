package google

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// StaticTokenSource wraps an access token obtained from the token coordinator.
// Refresh is the coordinator's job, so the source never refreshes by itself.
func StaticTokenSource(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
}

// NewGmailService creates a Gmail API service authorised with accessToken.
// Extra options are applied after the token source.
func NewGmailService(ctx context.Context, accessToken string, opts ...option.ClientOption) (*gmail.Service, error) {
	all := append([]option.ClientOption{option.WithTokenSource(StaticTokenSource(accessToken))}, opts...)
	return gmail.NewService(ctx, all...)
}

// NewCalendarService creates a Google Calendar API service authorised with accessToken.
func NewCalendarService(ctx context.Context, accessToken string, opts ...option.ClientOption) (*calendar.Service, error) {
	all := append([]option.ClientOption{option.WithTokenSource(StaticTokenSource(accessToken))}, opts...)
	return calendar.NewService(ctx, all...)
}
