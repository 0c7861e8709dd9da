package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
)

// credentialStore implements driven.CredentialStore.
type credentialStore struct {
	store *Store
}

var _ driven.CredentialStore = (*credentialStore)(nil)

const credentialColumns = `user_id, access_token, refresh_token, expires_at, created_at, updated_at`

// Get retrieves the owner's credential.
// Returns nil and no error if the owner has none.
func (s *credentialStore) Get(ctx context.Context, ownerID string) (*domain.Credential, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM google_tokens WHERE user_id = ?`, ownerID)

	cred, err := scanCredential(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return cred, err
}

// Upsert inserts or replaces the owner's credential.
func (s *credentialStore) Upsert(ctx context.Context, cred domain.Credential) (*domain.Credential, error) {
	if cred.OwnerID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := formatTime(s.store.now())
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO google_tokens (id, user_id, access_token, refresh_token, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, uuid.NewString(), cred.OwnerID, cred.AccessToken, cred.RefreshToken,
		formatTime(cred.Expiry), now, now)
	if err != nil {
		return nil, fmt.Errorf("upserting credential: %w", err)
	}

	return s.Get(ctx, cred.OwnerID)
}

// Update applies a partial update, optionally conditional on the stored expiry.
func (s *credentialStore) Update(
	ctx context.Context,
	ownerID string,
	update domain.CredentialUpdate,
) (*domain.Credential, error) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(s.store.now())}

	if update.AccessToken != nil {
		sets = append(sets, "access_token = ?")
		args = append(args, *update.AccessToken)
	}
	if update.RefreshToken != nil {
		sets = append(sets, "refresh_token = ?")
		args = append(args, *update.RefreshToken)
	}
	if update.Expiry != nil {
		sets = append(sets, "expires_at = ?")
		args = append(args, formatTime(*update.Expiry))
	}

	query := "UPDATE google_tokens SET " + strings.Join(sets, ", ") + " WHERE user_id = ?"
	args = append(args, ownerID)
	if update.IfExpiry != nil {
		query += " AND expires_at = ?"
		args = append(args, formatTime(*update.IfExpiry))
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning credential update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating credential: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating credential: %w", err)
	}

	if affected == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM google_tokens WHERE user_id = ?", ownerID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("checking credential: %w", err)
		}
		return nil, domain.ErrConflict
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM google_tokens WHERE user_id = ?`, ownerID)
	cred, err := scanCredential(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing credential update: %w", err)
	}
	return cred, nil
}

// ListExpiring returns credentials expiring at or before the given instant.
func (s *credentialStore) ListExpiring(ctx context.Context, before time.Time) ([]domain.Credential, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+credentialColumns+` FROM google_tokens WHERE expires_at <= ? ORDER BY expires_at`,
		formatTime(before))
	if err != nil {
		return nil, fmt.Errorf("querying expiring credentials: %w", err)
	}
	defer rows.Close()

	var creds []domain.Credential //nolint:prealloc // size unknown from query
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, *cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating credentials: %w", err)
	}
	return creds, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCredential scans a single google_tokens row.
func scanCredential(row rowScanner) (*domain.Credential, error) {
	var cred domain.Credential
	var expiresAt, createdAt, updatedAt string

	if err := row.Scan(&cred.OwnerID, &cred.AccessToken, &cred.RefreshToken,
		&expiresAt, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning credential: %w", err)
	}

	var err error
	if cred.Expiry, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	if cred.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if cred.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &cred, nil
}
