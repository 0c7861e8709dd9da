package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// CredentialStore persists the Google token pair of each owner.
// There is at most one credential per owner.
type CredentialStore interface {
	// Get retrieves the owner's credential.
	// Returns nil and no error if the owner has none.
	Get(ctx context.Context, ownerID string) (*domain.Credential, error)

	// Upsert inserts or replaces the owner's credential.
	// CreatedAt of an existing row is preserved.
	Upsert(ctx context.Context, cred domain.Credential) (*domain.Credential, error)

	// Update applies a partial update to an existing credential.
	// Returns domain.ErrNotFound if the owner has none, and domain.ErrConflict
	// when update.IfExpiry is set and no longer matches the stored expiry.
	Update(ctx context.Context, ownerID string, update domain.CredentialUpdate) (*domain.Credential, error)

	// ListExpiring returns credentials whose expiry is at or before the given instant.
	ListExpiring(ctx context.Context, before time.Time) ([]domain.Credential, error)
}
