package driving

import (
	"context"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// TokenService hands out usable Google access tokens for an owner.
type TokenService interface {
	// Valid returns the owner's credential with an unexpired access token,
	// refreshing it first when the stored token has expired.
	Valid(ctx context.Context, ownerID string) (*domain.Credential, error)

	// ForceRefresh refreshes regardless of expiry. stale is the credential
	// the caller saw rejected; if another caller already replaced it, the
	// newer credential is returned without a second refresh.
	ForceRefresh(ctx context.Context, ownerID string, stale *domain.Credential) (*domain.Credential, error)

	// RefreshExpiring refreshes every credential expiring within the
	// scheduler's lead time and returns how many were refreshed.
	RefreshExpiring(ctx context.Context) (int, error)
}
