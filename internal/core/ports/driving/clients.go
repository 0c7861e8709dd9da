package driving

import (
	"context"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// ClientService manages the caller's clients.
type ClientService interface {
	List(ctx context.Context, ownerID string) ([]domain.Client, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Client, error)
	Create(ctx context.Context, ownerID string, in domain.ClientInput) (*domain.Client, error)
	Update(ctx context.Context, ownerID, id string, patch domain.ClientPatch) (*domain.Client, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// TemplateService manages the caller's email templates.
type TemplateService interface {
	List(ctx context.Context, ownerID string) ([]domain.EmailTemplate, error)
	Get(ctx context.Context, ownerID, id string) (*domain.EmailTemplate, error)
	Create(ctx context.Context, ownerID string, in domain.TemplateInput) (*domain.EmailTemplate, error)
	Update(ctx context.Context, ownerID, id string, patch domain.TemplatePatch) (*domain.EmailTemplate, error)
	Delete(ctx context.Context, ownerID, id string) error
}
