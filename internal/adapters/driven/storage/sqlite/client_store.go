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

// clientStore implements driven.ClientStore.
type clientStore struct {
	store *Store
}

var _ driven.ClientStore = (*clientStore)(nil)

const clientColumns = `id, user_id, name, email, phone, notes, created_at, updated_at`

// List returns the owner's clients, newest first.
func (s *clientStore) List(ctx context.Context, ownerID string) ([]domain.Client, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+clientColumns+` FROM clients
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying clients: %w", err)
	}
	defer rows.Close()

	clients := []domain.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clients: %w", err)
	}
	return clients, nil
}

// Get returns one of the owner's clients.
func (s *clientStore) Get(ctx context.Context, id, ownerID string) (*domain.Client, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ? AND user_id = ?`, id, ownerID)
	return scanClient(row)
}

// Create stores a new client.
func (s *clientStore) Create(ctx context.Context, c domain.Client) (*domain.Client, error) {
	if c.OwnerID == "" {
		return nil, domain.ErrInvalidInput
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := s.store.now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.OwnerID, c.Name, c.Email, nullableString(c.Phone), nullableString(c.Notes),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("inserting client: %w", err)
	}
	return s.Get(ctx, c.ID, c.OwnerID)
}

// Update applies a patch to one of the owner's clients.
func (s *clientStore) Update(
	ctx context.Context,
	id, ownerID string,
	patch domain.ClientPatch,
) (*domain.Client, error) {
	c, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	patch.Apply(c)
	c.UpdatedAt = s.store.now().UTC()

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE clients SET name = ?, email = ?, phone = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, c.Name, c.Email, nullableString(c.Phone), nullableString(c.Notes), formatTime(c.UpdatedAt),
		id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("updating client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// Delete removes one of the owner's clients.
func (s *clientStore) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM clients WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindByIDs resolves ids to recipients owned by ownerID, in the order of ids.
func (s *clientStore) FindByIDs(ctx context.Context, ids []string, ownerID string) ([]domain.Recipient, error) {
	if len(ids) == 0 {
		return []domain.Recipient{}, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.store.db.QueryContext(ctx,
		`SELECT id, name, email FROM clients WHERE user_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("querying recipients: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.Recipient, len(ids))
	for rows.Next() {
		var r domain.Recipient
		if err := rows.Scan(&r.ID, &r.Name, &r.Email); err != nil {
			return nil, fmt.Errorf("scanning recipient: %w", err)
		}
		byID[r.ID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recipients: %w", err)
	}

	recipients := make([]domain.Recipient, 0, len(byID))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			recipients = append(recipients, r)
			delete(byID, id)
		}
	}
	return recipients, nil
}

func scanClient(row rowScanner) (*domain.Client, error) {
	var c domain.Client
	var phone, notes sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &phone, &notes,
		&createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning client: %w", err)
	}

	c.Phone = stringPtr(phone)
	c.Notes = stringPtr(notes)

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
