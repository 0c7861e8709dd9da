// Package domain defines the core business entities for clientdesk.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Credential: the Google OAuth token pair held for one owner
//   - Client: a contact owned by exactly one user
//   - EmailTemplate: a reusable subject and body with merge placeholders
//   - SendResult: the outcome of one mail-merge delivery
//   - CalendarEvent: a normalised Google Calendar entry
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
