package driven

import (
	"context"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// IdentityProvider talks to the OAuth authorization server.
type IdentityProvider interface {
	// AuthCodeURL returns the consent URL for state and the PKCE verifier.
	AuthCodeURL(state, verifier string) string

	// Exchange trades an authorization code for a token grant.
	Exchange(ctx context.Context, code, verifier string) (*domain.TokenGrant, error)

	// Refresh obtains a new access token. The returned grant's RefreshToken
	// is empty unless the provider rotated it.
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenGrant, error)

	// UserInfo fetches the profile of the token's subject.
	UserInfo(ctx context.Context, accessToken string) (*domain.GoogleProfile, error)
}
