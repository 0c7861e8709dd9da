package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
)

// Ensure ClientStore implements the interface.
var _ driven.ClientStore = (*ClientStore)(nil)

// ClientStore is an in-memory implementation of driven.ClientStore.
type ClientStore struct {
	mu      sync.RWMutex
	clients map[string]entry[domain.Client]
	seq     uint64
}

// entry pairs a value with its insertion sequence so that ties on
// CreatedAt still list newest first.
type entry[T any] struct {
	seq   uint64
	value T
}

// NewClientStore creates a new in-memory client store.
func NewClientStore() *ClientStore {
	return &ClientStore{
		clients: make(map[string]entry[domain.Client]),
	}
}

// List returns the owner's clients, newest first.
func (s *ClientStore) List(_ context.Context, ownerID string) ([]domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]entry[domain.Client], 0)
	for _, e := range s.clients {
		if e.value.OwnerID == ownerID {
			owned = append(owned, e)
		}
	}
	sortNewestFirst(owned, func(c domain.Client) time.Time { return c.CreatedAt })

	result := make([]domain.Client, 0, len(owned))
	for _, e := range owned {
		result = append(result, e.value)
	}
	return result, nil
}

// Get returns a client owned by ownerID.
func (s *ClientStore) Get(_ context.Context, id, ownerID string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.clients[id]
	if !ok || e.value.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	c := e.value
	return &c, nil
}

// Create stores a new client.
func (s *ClientStore) Create(_ context.Context, c domain.Client) (*domain.Client, error) {
	if c.OwnerID == "" {
		return nil, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	s.seq++
	s.clients[c.ID] = entry[domain.Client]{seq: s.seq, value: c}
	return &c, nil
}

// Update applies a patch to a client owned by ownerID.
func (s *ClientStore) Update(
	_ context.Context,
	id, ownerID string,
	patch domain.ClientPatch,
) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.clients[id]
	if !ok || e.value.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	patch.Apply(&e.value)
	e.value.UpdatedAt = time.Now().UTC()
	s.clients[id] = e

	c := e.value
	return &c, nil
}

// Delete removes a client owned by ownerID.
func (s *ClientStore) Delete(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.clients[id]
	if !ok || e.value.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(s.clients, id)
	return nil
}

// FindByIDs resolves ids to recipients owned by ownerID, in the order given.
func (s *ClientStore) FindByIDs(_ context.Context, ids []string, ownerID string) ([]domain.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool, len(ids))
	result := make([]domain.Recipient, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		e, ok := s.clients[id]
		if !ok || e.value.OwnerID != ownerID {
			continue
		}
		result = append(result, e.value.Recipient())
	}
	return result, nil
}

func sortNewestFirst[T any](entries []entry[T], created func(T) time.Time) {
	sort.Slice(entries, func(i, j int) bool {
		ci, cj := created(entries[i].value), created(entries[j].value)
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return entries[i].seq > entries[j].seq
	})
}
