package driven

import (
	"context"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// UserStore persists login identities.
type UserStore interface {
	// UpsertByGoogleID creates the user or refreshes email and name.
	// The returned user carries the stable ID.
	UpsertByGoogleID(ctx context.Context, profile domain.GoogleProfile) (*domain.User, error)

	// Get returns a user by ID or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.User, error)
}
