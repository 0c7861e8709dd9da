package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
)

// Ensure UserStore implements the interface.
var _ driven.UserStore = (*UserStore)(nil)

// UserStore is an in-memory implementation of driven.UserStore.
type UserStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	byGoogle map[string]string
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users:    make(map[string]domain.User),
		byGoogle: make(map[string]string),
	}
}

// UpsertByGoogleID creates the user on first login and refreshes email and name after.
func (s *UserStore) UpsertByGoogleID(_ context.Context, profile domain.GoogleProfile) (*domain.User, error) {
	if profile.ID == "" {
		return nil, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	user := domain.User{ID: uuid.NewString(), GoogleID: profile.ID, CreatedAt: now}
	if id, ok := s.byGoogle[profile.ID]; ok {
		user = s.users[id]
	}
	user.Email = profile.Email
	user.Name = profile.Name
	user.UpdatedAt = now

	s.users[user.ID] = user
	s.byGoogle[profile.ID] = user.ID
	return &user, nil
}

// Get returns a user by ID.
func (s *UserStore) Get(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}
