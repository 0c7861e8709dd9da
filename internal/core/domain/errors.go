package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist or is not
	// owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates a conditional write lost against a concurrent writer.
	ErrConflict = errors.New("conflict")

	// ErrRateLimited indicates the caller exceeded the request rate.
	ErrRateLimited = errors.New("rate limited")

	// Authentication Errors.

	// ErrUnauthenticated indicates the request carries no valid session.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNoCredential indicates the owner has never connected a Google account.
	ErrNoCredential = errors.New("google tokens not found, please reconnect your Google account")

	// ErrTokenRefreshFailed indicates the identity provider rejected a refresh.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// ErrProviderUnauthorized indicates the provider rejected the access token.
	ErrProviderUnauthorized = errors.New("provider rejected access token")

	// Mail Errors.

	// ErrUnauthorizedRecipient indicates at least one requested recipient is
	// missing or belongs to another owner. No mail is sent.
	ErrUnauthorizedRecipient = errors.New("one or more clients not found or do not belong to you")
)

// TokenRefreshError carries the identity provider's reason for a failed refresh.
type TokenRefreshError struct {
	OwnerID string
	Detail  string
	Err     error
}

func (e *TokenRefreshError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s for owner %s: %s", ErrTokenRefreshFailed, e.OwnerID, e.Detail)
	}
	return fmt.Sprintf("%s for owner %s", ErrTokenRefreshFailed, e.OwnerID)
}

// Is reports ErrTokenRefreshFailed so callers can match on the sentinel.
func (e *TokenRefreshError) Is(target error) bool {
	return target == ErrTokenRefreshFailed
}

func (e *TokenRefreshError) Unwrap() error {
	return e.Err
}

// ValidationError lists per-field problems with caller input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a problem for field. The first message for a field wins.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// OrNil returns e when it holds at least one field, otherwise nil.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is reports ErrInvalidInput so callers can match on the sentinel.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
