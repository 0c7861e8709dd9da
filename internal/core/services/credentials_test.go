package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clientdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func seedCredential(t *testing.T, store *memory.CredentialStore, cred domain.Credential) {
	t.Helper()
	_, err := store.Upsert(context.Background(), cred)
	require.NoError(t, err)
}

func newTestRefresher(store *memory.CredentialStore, provider *mockIdentityProvider) *TokenRefresher {
	return NewTokenRefresher(store, provider, WithClock(fixedNow), WithRefreshLead(10*time.Minute))
}

func TestTokenRefresher_Valid_UnexpiredSkipsProvider(t *testing.T) {
	store := memory.NewCredentialStore()
	provider := &mockIdentityProvider{}
	seedCredential(t, store, domain.Credential{
		OwnerID: "u1", AccessToken: "a0", RefreshToken: "r0", Expiry: testNow.Add(time.Minute),
	})

	cred, err := newTestRefresher(store, provider).Valid(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a0", cred.AccessToken)
	assert.Equal(t, 0, provider.refreshCount())
}

func TestTokenRefresher_Valid_ExpiredRefreshes(t *testing.T) {
	tests := []struct {
		name        string
		grant       domain.TokenGrant
		wantRefresh string
		wantExpiry  time.Time
	}{
		{
			name:        "keeps refresh token when none issued",
			grant:       domain.TokenGrant{AccessToken: "a1", Expiry: testNow.Add(time.Hour)},
			wantRefresh: "r0",
			wantExpiry:  testNow.Add(time.Hour),
		},
		{
			name:        "stores rotated refresh token",
			grant:       domain.TokenGrant{AccessToken: "a1", RefreshToken: "r1", Expiry: testNow.Add(time.Hour)},
			wantRefresh: "r1",
			wantExpiry:  testNow.Add(time.Hour),
		},
		{
			name:        "missing expiry defaults to one hour",
			grant:       domain.TokenGrant{AccessToken: "a1"},
			wantRefresh: "r0",
			wantExpiry:  testNow.Add(domain.DefaultTokenLifetime),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewCredentialStore()
			grant := tt.grant
			provider := &mockIdentityProvider{
				refreshFn: func(string) (*domain.TokenGrant, error) { return &grant, nil },
			}
			// Expiry equal to now counts as expired.
			seedCredential(t, store, domain.Credential{
				OwnerID: "u1", AccessToken: "a0", RefreshToken: "r0", Expiry: testNow,
			})

			cred, err := newTestRefresher(store, provider).Valid(context.Background(), "u1")
			require.NoError(t, err)
			assert.Equal(t, "a1", cred.AccessToken)
			assert.Equal(t, tt.wantRefresh, cred.RefreshToken)
			assert.True(t, tt.wantExpiry.Equal(cred.Expiry))

			stored, err := store.Get(context.Background(), "u1")
			require.NoError(t, err)
			assert.Equal(t, "a1", stored.AccessToken)
			assert.Equal(t, tt.wantRefresh, stored.RefreshToken)
		})
	}
}

func TestTokenRefresher_Valid_ConcurrentCallersShareOneRefresh(t *testing.T) {
	store := memory.NewCredentialStore()
	provider := &mockIdentityProvider{
		refreshDelay: 20 * time.Millisecond,
		refreshFn: func(string) (*domain.TokenGrant, error) {
			return &domain.TokenGrant{AccessToken: "fresh", Expiry: testNow.Add(time.Hour)}, nil
		},
	}
	seedCredential(t, store, domain.Credential{
		OwnerID: "u1", AccessToken: "old", RefreshToken: "r0", Expiry: testNow.Add(-time.Minute),
	})
	refresher := newTestRefresher(store, provider)

	const callers = 10
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cred, err := refresher.Valid(context.Background(), "u1")
			errs[i] = err
			if cred != nil {
				tokens[i] = cred.AccessToken
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "fresh", tokens[i])
	}
	assert.Equal(t, 1, provider.refreshCount())
	assert.Equal(t, 0, refresher.locks.size())
}

func TestTokenRefresher_Valid_Errors(t *testing.T) {
	t.Run("no credential", func(t *testing.T) {
		_, err := newTestRefresher(memory.NewCredentialStore(), &mockIdentityProvider{}).
			Valid(context.Background(), "nobody")
		assert.ErrorIs(t, err, domain.ErrNoCredential)
	})

	t.Run("no refresh token", func(t *testing.T) {
		store := memory.NewCredentialStore()
		provider := &mockIdentityProvider{}
		seedCredential(t, store, domain.Credential{OwnerID: "u1", AccessToken: "a0", Expiry: testNow})

		_, err := newTestRefresher(store, provider).Valid(context.Background(), "u1")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrTokenRefreshFailed)

		var rerr *domain.TokenRefreshError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, "u1", rerr.OwnerID)
		assert.Equal(t, "no refresh token stored", rerr.Detail)
		assert.Equal(t, 0, provider.refreshCount())
	})

	t.Run("provider rejection carries detail", func(t *testing.T) {
		store := memory.NewCredentialStore()
		provider := &mockIdentityProvider{
			refreshFn: func(string) (*domain.TokenGrant, error) {
				return nil, &domain.TokenRefreshError{Detail: "invalid_grant: Token has been expired or revoked."}
			},
		}
		seedCredential(t, store, domain.Credential{OwnerID: "u1", AccessToken: "a0", RefreshToken: "r0", Expiry: testNow})

		_, err := newTestRefresher(store, provider).Valid(context.Background(), "u1")
		var rerr *domain.TokenRefreshError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, "u1", rerr.OwnerID)
		assert.Contains(t, err.Error(), "invalid_grant")

		stored, getErr := store.Get(context.Background(), "u1")
		require.NoError(t, getErr)
		assert.Equal(t, "a0", stored.AccessToken)
	})

	t.Run("plain provider error is wrapped", func(t *testing.T) {
		store := memory.NewCredentialStore()
		cause := errors.New("connection reset")
		provider := &mockIdentityProvider{
			refreshFn: func(string) (*domain.TokenGrant, error) { return nil, cause },
		}
		seedCredential(t, store, domain.Credential{OwnerID: "u1", AccessToken: "a0", RefreshToken: "r0", Expiry: testNow})

		_, err := newTestRefresher(store, provider).Valid(context.Background(), "u1")
		assert.ErrorIs(t, err, domain.ErrTokenRefreshFailed)
		assert.ErrorIs(t, err, cause)
	})
}

func TestTokenRefresher_ForceRefresh(t *testing.T) {
	t.Run("refreshes unexpired token seen as stale", func(t *testing.T) {
		store := memory.NewCredentialStore()
		provider := &mockIdentityProvider{}
		seedCredential(t, store, domain.Credential{
			OwnerID: "u1", AccessToken: "a0", RefreshToken: "r0", Expiry: testNow.Add(time.Hour),
		})
		refresher := newTestRefresher(store, provider)

		stale, err := refresher.Valid(context.Background(), "u1")
		require.NoError(t, err)

		cred, err := refresher.ForceRefresh(context.Background(), "u1", stale)
		require.NoError(t, err)
		assert.Equal(t, "access-1", cred.AccessToken)
		assert.Equal(t, 1, provider.refreshCount())
	})

	t.Run("token already replaced is reused", func(t *testing.T) {
		store := memory.NewCredentialStore()
		provider := &mockIdentityProvider{}
		seedCredential(t, store, domain.Credential{
			OwnerID: "u1", AccessToken: "a-new", RefreshToken: "r0", Expiry: testNow.Add(time.Hour),
		})

		cred, err := newTestRefresher(store, provider).
			ForceRefresh(context.Background(), "u1", &domain.Credential{AccessToken: "a-old"})
		require.NoError(t, err)
		assert.Equal(t, "a-new", cred.AccessToken)
		assert.Equal(t, 0, provider.refreshCount())
	})
}

// racingStore simulates another process writing the credential while a
// refresh is in flight.
type racingStore struct {
	*memory.CredentialStore
	once sync.Once
}

func (s *racingStore) Update(ctx context.Context, ownerID string, update domain.CredentialUpdate) (*domain.Credential, error) {
	s.once.Do(func() {
		_, _ = s.CredentialStore.Upsert(ctx, domain.Credential{
			OwnerID: ownerID, AccessToken: "from-elsewhere", RefreshToken: "r0", Expiry: testNow.Add(2 * time.Hour),
		})
	})
	return s.CredentialStore.Update(ctx, ownerID, update)
}

func TestTokenRefresher_ConflictingWriteWins(t *testing.T) {
	inner := memory.NewCredentialStore()
	seedCredential(t, inner, domain.Credential{OwnerID: "u1", AccessToken: "a0", RefreshToken: "r0", Expiry: testNow})
	store := &racingStore{CredentialStore: inner}
	provider := &mockIdentityProvider{}

	cred, err := NewTokenRefresher(store, provider, WithClock(fixedNow)).Valid(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "from-elsewhere", cred.AccessToken)
	assert.Equal(t, 1, provider.refreshCount())
}

func TestTokenRefresher_RefreshExpiring(t *testing.T) {
	store := memory.NewCredentialStore()
	provider := &mockIdentityProvider{
		refreshFn: func(rt string) (*domain.TokenGrant, error) {
			if rt == "r-bad" {
				return nil, &domain.TokenRefreshError{Detail: "invalid_grant"}
			}
			return &domain.TokenGrant{AccessToken: "new-" + rt, Expiry: testNow.Add(time.Hour)}, nil
		},
	}
	seedCredential(t, store, domain.Credential{OwnerID: "soon", AccessToken: "a", RefreshToken: "r-soon", Expiry: testNow.Add(5 * time.Minute)})
	seedCredential(t, store, domain.Credential{OwnerID: "expired", AccessToken: "a", RefreshToken: "r-exp", Expiry: testNow.Add(-time.Hour)})
	seedCredential(t, store, domain.Credential{OwnerID: "later", AccessToken: "a", RefreshToken: "r-later", Expiry: testNow.Add(time.Hour)})
	seedCredential(t, store, domain.Credential{OwnerID: "no-rt", AccessToken: "a", Expiry: testNow.Add(time.Minute)})
	seedCredential(t, store, domain.Credential{OwnerID: "revoked", AccessToken: "a", RefreshToken: "r-bad", Expiry: testNow.Add(time.Minute)})

	n, err := newTestRefresher(store, provider).RefreshExpiring(context.Background())
	assert.Equal(t, 2, n)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTokenRefreshFailed)
	assert.Contains(t, err.Error(), "revoked")

	for owner, want := range map[string]string{
		"soon":    "new-r-soon",
		"expired": "new-r-exp",
		"later":   "a",
		"no-rt":   "a",
		"revoked": "a",
	} {
		cred, getErr := store.Get(context.Background(), owner)
		require.NoError(t, getErr)
		assert.Equal(t, want, cred.AccessToken, owner)
	}
}

func TestTokenRefresher_RefreshExpiring_Nothing(t *testing.T) {
	n, err := newTestRefresher(memory.NewCredentialStore(), &mockIdentityProvider{}).
		RefreshExpiring(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
