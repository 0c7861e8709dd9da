package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driving"
	"github.com/custodia-labs/clientdesk/internal/logger"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthService runs the Google sign-in flow and records the resulting tokens.
type AuthService struct {
	provider driven.IdentityProvider
	users    driven.UserStore
	creds    driven.CredentialStore
	now      func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(
	provider driven.IdentityProvider,
	users driven.UserStore,
	creds driven.CredentialStore,
) *AuthService {
	return &AuthService{
		provider: provider,
		users:    users,
		creds:    creds,
		now:      time.Now,
	}
}

// BeginLogin creates a fresh state and PKCE verifier and the matching consent URL.
func (s *AuthService) BeginLogin() (*domain.LoginChallenge, error) {
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	verifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("generate code verifier: %w", err)
	}

	return &domain.LoginChallenge{
		URL:      s.provider.AuthCodeURL(state, verifier),
		State:    state,
		Verifier: verifier,
	}, nil
}

// CompleteLogin exchanges the code, records the user and stores the tokens.
// Failing to store the tokens is logged and reported in the result; the
// user is still signed in.
func (s *AuthService) CompleteLogin(ctx context.Context, code, verifier string) (*domain.LoginResult, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", domain.ErrInvalidInput)
	}

	grant, err := s.provider.Exchange(ctx, code, verifier)
	if err != nil {
		return nil, err
	}

	profile, err := s.provider.UserInfo(ctx, grant.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetching google profile: %w", err)
	}

	user, err := s.users.UpsertByGoogleID(ctx, *profile)
	if err != nil {
		return nil, fmt.Errorf("saving user: %w", err)
	}

	result := &domain.LoginResult{User: user, CredentialStored: true}
	if err := s.storeCredential(ctx, user.ID, grant); err != nil {
		logger.Error("failed to store google tokens", "owner_id", user.ID, "error", err)
		result.CredentialStored = false
	}

	logger.Info("user signed in", "owner_id", user.ID, "google_connected", result.CredentialStored)
	return result, nil
}

// CurrentUser returns the user behind a session subject.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	return user, err
}

// storeCredential upserts the grant. When Google issued no refresh token
// the one already stored for the owner is kept.
func (s *AuthService) storeCredential(ctx context.Context, ownerID string, grant *domain.TokenGrant) error {
	refreshToken := grant.RefreshToken
	if refreshToken == "" {
		existing, err := s.creds.Get(ctx, ownerID)
		if err != nil {
			return err
		}
		if existing != nil {
			refreshToken = existing.RefreshToken
		}
	}

	_, err := s.creds.Upsert(ctx, domain.Credential{
		OwnerID:      ownerID,
		AccessToken:  grant.AccessToken,
		RefreshToken: refreshToken,
		Expiry:       grant.ExpiryOr(s.now()),
	})
	return err
}
