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

// Ensure TokenRefresher implements the interface.
var _ driving.TokenService = (*TokenRefresher)(nil)

// TokenRefresher keeps each owner's Google access token usable.
//
// Refreshes for one owner are serialised. After taking the owner's lock the
// credential is read again, so a caller that waited behind another refresh
// reuses its result. The write is conditional on the expiry that was read,
// which also guards against other processes sharing the store.
type TokenRefresher struct {
	store    driven.CredentialStore
	provider driven.IdentityProvider
	lead     time.Duration
	now      func() time.Time
	locks    *keyedMutex
}

// RefresherOption configures a TokenRefresher.
type RefresherOption func(*TokenRefresher)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) RefresherOption {
	return func(r *TokenRefresher) { r.now = now }
}

// WithRefreshLead sets how far ahead of expiry RefreshExpiring acts.
func WithRefreshLead(d time.Duration) RefresherOption {
	return func(r *TokenRefresher) { r.lead = d }
}

// NewTokenRefresher creates a TokenRefresher.
func NewTokenRefresher(
	store driven.CredentialStore,
	provider driven.IdentityProvider,
	opts ...RefresherOption,
) *TokenRefresher {
	r := &TokenRefresher{
		store:    store,
		provider: provider,
		lead:     domain.DefaultSchedulerConfig().RefreshLead,
		now:      time.Now,
		locks:    newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Valid returns the owner's credential, refreshed first if it has expired.
func (r *TokenRefresher) Valid(ctx context.Context, ownerID string) (*domain.Credential, error) {
	cred, err := r.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !cred.IsExpiredAt(r.now()) {
		return cred, nil
	}

	return r.refresh(ctx, ownerID, func(cur *domain.Credential) bool {
		return cur.IsExpiredAt(r.now())
	})
}

// ForceRefresh refreshes even if the stored token has not expired.
// If the stored access token already differs from stale, it is returned as is.
func (r *TokenRefresher) ForceRefresh(
	ctx context.Context,
	ownerID string,
	stale *domain.Credential,
) (*domain.Credential, error) {
	return r.refresh(ctx, ownerID, func(cur *domain.Credential) bool {
		return stale == nil || cur.AccessToken == stale.AccessToken
	})
}

// RefreshExpiring refreshes every credential that expires within the lead
// time. A failure for one owner does not stop the others; all failures are
// joined into the returned error.
func (r *TokenRefresher) RefreshExpiring(ctx context.Context) (int, error) {
	horizon := r.now().Add(r.lead)
	creds, err := r.store.ListExpiring(ctx, horizon)
	if err != nil {
		return 0, fmt.Errorf("listing expiring credentials: %w", err)
	}

	refreshed := 0
	var errs []error
	for i := range creds {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		cred := &creds[i]
		if !cred.HasRefreshToken() {
			logger.Debug("skipping credential without refresh token", "owner_id", cred.OwnerID)
			continue
		}

		_, err := r.refresh(ctx, cred.OwnerID, func(cur *domain.Credential) bool {
			return !cur.Expiry.After(horizon)
		})
		if err != nil {
			logger.Warn("proactive token refresh failed", "owner_id", cred.OwnerID, "error", err)
			errs = append(errs, err)
			continue
		}
		refreshed++
	}

	return refreshed, errors.Join(errs...)
}

func (r *TokenRefresher) load(ctx context.Context, ownerID string) (*domain.Credential, error) {
	cred, err := r.store.Get(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading credential: %w", err)
	}
	if cred == nil {
		return nil, domain.ErrNoCredential
	}
	return cred, nil
}

// refresh takes the owner's lock, re-reads the credential and refreshes it
// when needed still reports true.
func (r *TokenRefresher) refresh(
	ctx context.Context,
	ownerID string,
	needed func(*domain.Credential) bool,
) (*domain.Credential, error) {
	unlock := r.locks.Lock(ownerID)
	defer unlock()

	cur, err := r.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !needed(cur) {
		logger.Debug("token already refreshed by another request", "owner_id", ownerID)
		return cur, nil
	}
	if !cur.HasRefreshToken() {
		return nil, &domain.TokenRefreshError{OwnerID: ownerID, Detail: "no refresh token stored"}
	}

	grant, err := r.provider.Refresh(ctx, cur.RefreshToken)
	if err != nil {
		return nil, refreshError(ownerID, err)
	}

	expiry := grant.ExpiryOr(r.now())
	update := domain.CredentialUpdate{
		AccessToken: &grant.AccessToken,
		Expiry:      &expiry,
		IfExpiry:    &cur.Expiry,
	}
	if grant.RefreshToken != "" {
		update.RefreshToken = &grant.RefreshToken
	}

	updated, err := r.store.Update(ctx, ownerID, update)
	switch {
	case errors.Is(err, domain.ErrConflict):
		logger.Debug("credential changed during refresh, using stored value", "owner_id", ownerID)
		return r.load(ctx, ownerID)
	case errors.Is(err, domain.ErrNotFound):
		return nil, domain.ErrNoCredential
	case err != nil:
		return nil, fmt.Errorf("saving refreshed credential: %w", err)
	}

	logger.Debug("refreshed google access token", "owner_id", ownerID, "expiry", expiry)
	return updated, nil
}

func refreshError(ownerID string, err error) error {
	var rerr *domain.TokenRefreshError
	if errors.As(err, &rerr) {
		out := *rerr
		out.OwnerID = ownerID
		return &out
	}
	return &domain.TokenRefreshError{OwnerID: ownerID, Detail: err.Error(), Err: err}
}
