// Package google provides the Google side of clientdesk.
//
// It contains:
//   - IdentityProvider, the OAuth 2.0 client used for login and token refresh
//   - Service factories for the Gmail and Calendar API clients
//   - Error mapping from Google API errors to domain errors
//   - Rate limiting to respect Google API quotas
//
// The gmail and calendar subpackages build on it to implement the
// driven.MailSender and driven.EventLister ports.
//
// # OAuth2 Scopes
//
// clientdesk requests these scopes:
//   - openid, userinfo.email, userinfo.profile (non-sensitive)
//   - https://www.googleapis.com/auth/gmail.send (sensitive)
//   - https://www.googleapis.com/auth/calendar.readonly (sensitive)
package google
