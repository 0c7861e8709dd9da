package services

import (
	"context"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driving"
)

// Ensure services implement the interfaces.
var (
	_ driving.ClientService   = (*ClientService)(nil)
	_ driving.TemplateService = (*TemplateService)(nil)
)

// ClientService manages an owner's clients.
type ClientService struct {
	store driven.ClientStore
}

// NewClientService creates a ClientService.
func NewClientService(store driven.ClientStore) *ClientService {
	return &ClientService{store: store}
}

// List returns the owner's clients, newest first.
func (s *ClientService) List(ctx context.Context, ownerID string) ([]domain.Client, error) {
	return s.store.List(ctx, ownerID)
}

// Get returns one of the owner's clients.
func (s *ClientService) Get(ctx context.Context, ownerID, id string) (*domain.Client, error) {
	return s.store.Get(ctx, id, ownerID)
}

// Create validates and stores a new client.
func (s *ClientService) Create(ctx context.Context, ownerID string, in domain.ClientInput) (*domain.Client, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.store.Create(ctx, domain.Client{
		OwnerID: ownerID,
		Name:    strings.TrimSpace(in.Name),
		Email:   in.Email,
		Phone:   in.Phone,
		Notes:   in.Notes,
	})
}

// Update validates and applies a partial update.
func (s *ClientService) Update(
	ctx context.Context,
	ownerID, id string,
	patch domain.ClientPatch,
) (*domain.Client, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	return s.store.Update(ctx, id, ownerID, patch)
}

// Delete removes one of the owner's clients.
func (s *ClientService) Delete(ctx context.Context, ownerID, id string) error {
	return s.store.Delete(ctx, id, ownerID)
}

// TemplateService manages an owner's email templates.
// Bodies are sanitised on write so stored HTML is safe to render.
type TemplateService struct {
	store  driven.TemplateStore
	policy *bluemonday.Policy
}

// NewTemplateService creates a TemplateService.
func NewTemplateService(store driven.TemplateStore) *TemplateService {
	return &TemplateService{
		store:  store,
		policy: bluemonday.UGCPolicy(),
	}
}

// List returns the owner's templates, newest first.
func (s *TemplateService) List(ctx context.Context, ownerID string) ([]domain.EmailTemplate, error) {
	return s.store.List(ctx, ownerID)
}

// Get returns one of the owner's templates.
func (s *TemplateService) Get(ctx context.Context, ownerID, id string) (*domain.EmailTemplate, error) {
	return s.store.Get(ctx, id, ownerID)
}

// Create validates, sanitises and stores a new template.
func (s *TemplateService) Create(
	ctx context.Context,
	ownerID string,
	in domain.TemplateInput,
) (*domain.EmailTemplate, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	body, err := s.sanitize(in.Body)
	if err != nil {
		return nil, err
	}
	return s.store.Create(ctx, domain.EmailTemplate{
		OwnerID: ownerID,
		Name:    strings.TrimSpace(in.Name),
		Subject: in.Subject,
		Body:    body,
	})
}

// Update validates, sanitises and applies a partial update.
func (s *TemplateService) Update(
	ctx context.Context,
	ownerID, id string,
	patch domain.TemplatePatch,
) (*domain.EmailTemplate, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Body != nil {
		body, err := s.sanitize(*patch.Body)
		if err != nil {
			return nil, err
		}
		patch.Body = &body
	}
	return s.store.Update(ctx, id, ownerID, patch)
}

// Delete removes one of the owner's templates.
func (s *TemplateService) Delete(ctx context.Context, ownerID, id string) error {
	return s.store.Delete(ctx, id, ownerID)
}

// sanitize strips unsafe markup and rejects bodies left empty by it.
func (s *TemplateService) sanitize(body string) (string, error) {
	clean := s.policy.Sanitize(body)
	if strings.TrimSpace(clean) == "" {
		v := domain.NewValidationError()
		v.Add("body", "body has no allowed content")
		return "", v
	}
	return clean, nil
}
