package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
)

// userStore implements driven.UserStore.
type userStore struct {
	store *Store
}

var _ driven.UserStore = (*userStore)(nil)

// UpsertByGoogleID creates the user on first login and refreshes email and name after.
func (s *userStore) UpsertByGoogleID(ctx context.Context, profile domain.GoogleProfile) (*domain.User, error) {
	if profile.ID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := formatTime(s.store.now())
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO users (id, google_id, email, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(google_id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			updated_at = excluded.updated_at
	`, uuid.NewString(), profile.ID, profile.Email, profile.Name, now, now)
	if err != nil {
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, google_id, email, name, created_at, updated_at
		FROM users WHERE google_id = ?
	`, profile.ID)
	return scanUser(row)
}

// Get returns a user by ID.
func (s *userStore) Get(ctx context.Context, id string) (*domain.User, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, google_id, email, name, created_at, updated_at
		FROM users WHERE id = ?
	`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var createdAt, updatedAt string
	if err := row.Scan(&u.ID, &u.GoogleID, &u.Email, &u.Name, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
