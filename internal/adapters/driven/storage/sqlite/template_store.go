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

// templateStore implements driven.TemplateStore.
type templateStore struct {
	store *Store
}

var _ driven.TemplateStore = (*templateStore)(nil)

const templateColumns = `id, user_id, name, subject, body, created_at, updated_at`

// List returns the owner's templates, newest first.
func (s *templateStore) List(ctx context.Context, ownerID string) ([]domain.EmailTemplate, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+templateColumns+` FROM email_templates
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	templates := []domain.EmailTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating templates: %w", err)
	}
	return templates, nil
}

// Get returns one of the owner's templates.
func (s *templateStore) Get(ctx context.Context, id, ownerID string) (*domain.EmailTemplate, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM email_templates WHERE id = ? AND user_id = ?`, id, ownerID)
	return scanTemplate(row)
}

// Create stores a new template.
func (s *templateStore) Create(ctx context.Context, t domain.EmailTemplate) (*domain.EmailTemplate, error) {
	if t.OwnerID == "" {
		return nil, domain.ErrInvalidInput
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := s.store.now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO email_templates (`+templateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.OwnerID, t.Name, t.Subject, t.Body, formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("inserting template: %w", err)
	}
	return s.Get(ctx, t.ID, t.OwnerID)
}

// Update applies a patch to one of the owner's templates.
func (s *templateStore) Update(
	ctx context.Context,
	id, ownerID string,
	patch domain.TemplatePatch,
) (*domain.EmailTemplate, error) {
	t, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	patch.Apply(t)
	t.UpdatedAt = s.store.now().UTC()

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE email_templates SET name = ?, subject = ?, body = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, t.Name, t.Subject, t.Body, formatTime(t.UpdatedAt), id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("updating template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// Delete removes one of the owner's templates.
func (s *templateStore) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM email_templates WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTemplate(row rowScanner) (*domain.EmailTemplate, error) {
	var t domain.EmailTemplate
	var createdAt, updatedAt string

	if err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Subject, &t.Body, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning template: %w", err)
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
