package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
)

// Ensure CredentialStore implements the interface.
var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore is an in-memory implementation of driven.CredentialStore.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[string]domain.Credential
	now   func() time.Time
}

// NewCredentialStore creates a new in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		creds: make(map[string]domain.Credential),
		now:   time.Now,
	}
}

// Get retrieves the owner's credential, or nil if there is none.
func (s *CredentialStore) Get(_ context.Context, ownerID string) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[ownerID]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

// Upsert inserts or replaces the owner's credential.
func (s *CredentialStore) Upsert(_ context.Context, cred domain.Credential) (*domain.Credential, error) {
	if cred.OwnerID == "" {
		return nil, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	cred.CreatedAt = now
	if existing, ok := s.creds[cred.OwnerID]; ok {
		cred.CreatedAt = existing.CreatedAt
	}
	cred.UpdatedAt = now
	s.creds[cred.OwnerID] = cred
	return &cred, nil
}

// Update applies a partial update, optionally conditional on the stored expiry.
func (s *CredentialStore) Update(
	_ context.Context,
	ownerID string,
	update domain.CredentialUpdate,
) (*domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.creds[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if update.IfExpiry != nil && !cred.Expiry.Equal(*update.IfExpiry) {
		return nil, domain.ErrConflict
	}

	update.Apply(&cred)
	cred.UpdatedAt = s.now().UTC()
	s.creds[ownerID] = cred
	return &cred, nil
}

// ListExpiring returns credentials expiring at or before the given instant, soonest first.
func (s *CredentialStore) ListExpiring(_ context.Context, before time.Time) ([]domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Credential
	for _, cred := range s.creds {
		if !cred.Expiry.After(before) {
			result = append(result, cred)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Expiry.Before(result[j].Expiry)
	})
	return result, nil
}
