package driven

import (
	"context"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// TemplateStore persists email templates scoped to their owner.
type TemplateStore interface {
	// List returns the owner's templates, newest first.
	List(ctx context.Context, ownerID string) ([]domain.EmailTemplate, error)

	// Get returns a template or domain.ErrNotFound.
	Get(ctx context.Context, id, ownerID string) (*domain.EmailTemplate, error)

	// Create stores a new template. ID and timestamps are assigned if empty.
	Create(ctx context.Context, tmpl domain.EmailTemplate) (*domain.EmailTemplate, error)

	// Update applies a patch and returns the stored template or domain.ErrNotFound.
	Update(ctx context.Context, id, ownerID string, patch domain.TemplatePatch) (*domain.EmailTemplate, error)

	// Delete removes a template or returns domain.ErrNotFound.
	Delete(ctx context.Context, id, ownerID string) error
}
