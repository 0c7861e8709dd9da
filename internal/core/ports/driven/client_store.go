package driven

import (
	"context"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// ClientStore persists clients scoped to their owner.
// Rows of other owners are indistinguishable from missing rows.
type ClientStore interface {
	// List returns the owner's clients, newest first.
	List(ctx context.Context, ownerID string) ([]domain.Client, error)

	// Get returns a client or domain.ErrNotFound.
	Get(ctx context.Context, id, ownerID string) (*domain.Client, error)

	// Create stores a new client. ID and timestamps are assigned if empty.
	Create(ctx context.Context, client domain.Client) (*domain.Client, error)

	// Update applies a patch and returns the stored client or domain.ErrNotFound.
	Update(ctx context.Context, id, ownerID string, patch domain.ClientPatch) (*domain.Client, error)

	// Delete removes a client or returns domain.ErrNotFound.
	Delete(ctx context.Context, id, ownerID string) error

	// FindByIDs resolves ids to recipients owned by ownerID.
	// Missing and foreign ids are omitted. Order follows ids.
	FindByIDs(ctx context.Context, ids []string, ownerID string) ([]domain.Recipient, error)
}
