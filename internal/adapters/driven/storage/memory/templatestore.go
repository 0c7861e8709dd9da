package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
)

// Ensure TemplateStore implements the interface.
var _ driven.TemplateStore = (*TemplateStore)(nil)

// TemplateStore is an in-memory implementation of driven.TemplateStore.
type TemplateStore struct {
	mu        sync.RWMutex
	templates map[string]entry[domain.EmailTemplate]
	seq       uint64
}

// NewTemplateStore creates a new in-memory template store.
func NewTemplateStore() *TemplateStore {
	return &TemplateStore{
		templates: make(map[string]entry[domain.EmailTemplate]),
	}
}

// List returns the owner's templates, newest first.
func (s *TemplateStore) List(_ context.Context, ownerID string) ([]domain.EmailTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]entry[domain.EmailTemplate], 0)
	for _, e := range s.templates {
		if e.value.OwnerID == ownerID {
			owned = append(owned, e)
		}
	}
	sortNewestFirst(owned, func(t domain.EmailTemplate) time.Time { return t.CreatedAt })

	result := make([]domain.EmailTemplate, 0, len(owned))
	for _, e := range owned {
		result = append(result, e.value)
	}
	return result, nil
}

// Get returns a template owned by ownerID.
func (s *TemplateStore) Get(_ context.Context, id, ownerID string) (*domain.EmailTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.templates[id]
	if !ok || e.value.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	t := e.value
	return &t, nil
}

// Create stores a new template.
func (s *TemplateStore) Create(_ context.Context, t domain.EmailTemplate) (*domain.EmailTemplate, error) {
	if t.OwnerID == "" {
		return nil, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	s.seq++
	s.templates[t.ID] = entry[domain.EmailTemplate]{seq: s.seq, value: t}
	return &t, nil
}

// Update applies a patch to a template owned by ownerID.
func (s *TemplateStore) Update(
	_ context.Context,
	id, ownerID string,
	patch domain.TemplatePatch,
) (*domain.EmailTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.templates[id]
	if !ok || e.value.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	patch.Apply(&e.value)
	e.value.UpdatedAt = time.Now().UTC()
	s.templates[id] = e

	t := e.value
	return &t, nil
}

// Delete removes a template owned by ownerID.
func (s *TemplateStore) Delete(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.templates[id]
	if !ok || e.value.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(s.templates, id)
	return nil
}
