package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// fakeGoogle serves the token and userinfo endpoints.
type fakeGoogle struct {
	t          *testing.T
	tokenForms []url.Values
	tokenReply func(w http.ResponseWriter, form url.Values)
}

func (f *fakeGoogle) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(f.t, r.ParseForm())
		f.tokenForms = append(f.tokenForms, r.PostForm)
		f.tokenReply(w, r.PostForm)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "g-123", "email": "owner@example.com", "name": "Owner", "verified_email": true,
		})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestProvider(t *testing.T, reply func(w http.ResponseWriter, form url.Values)) (*IdentityProvider, *fakeGoogle) {
	t.Helper()
	fake := &fakeGoogle{t: t, tokenReply: reply}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	p := NewIdentityProvider(OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scopes:       domain.DefaultGoogleScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		UserInfoURL: srv.URL + "/userinfo",
		HTTPClient:  srv.Client(),
	})
	return p, fake
}

func TestIdentityProvider_AuthCodeURL(t *testing.T) {
	p, _ := newTestProvider(t, nil)

	raw := p.AuthCodeURL("state-1", "verifier-1")
	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()

	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, oauth2.S256ChallengeFromVerifier("verifier-1"), q.Get("code_challenge"))
	assert.Contains(t, q.Get("scope"), "https://www.googleapis.com/auth/gmail.send")
}

func TestIdentityProvider_Exchange(t *testing.T) {
	p, fake := newTestProvider(t, func(w http.ResponseWriter, _ url.Values) {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "at-1", "refresh_token": "rt-1", "token_type": "Bearer", "expires_in": 3600,
		})
	})

	before := time.Now()
	grant, err := p.Exchange(context.Background(), "code-1", "verifier-1")
	require.NoError(t, err)

	assert.Equal(t, "at-1", grant.AccessToken)
	assert.Equal(t, "rt-1", grant.RefreshToken)
	assert.WithinDuration(t, before.Add(time.Hour), grant.Expiry, 5*time.Second)

	require.Len(t, fake.tokenForms, 1)
	assert.Equal(t, "authorization_code", fake.tokenForms[0].Get("grant_type"))
	assert.Equal(t, "code-1", fake.tokenForms[0].Get("code"))
	assert.Equal(t, "verifier-1", fake.tokenForms[0].Get("code_verifier"))
}

func TestIdentityProvider_Refresh(t *testing.T) {
	tests := []struct {
		name        string
		reply       map[string]any
		wantRefresh string
		wantZeroExp bool
	}{
		{
			name:        "refresh token kept",
			reply:       map[string]any{"access_token": "at-2", "token_type": "Bearer", "expires_in": 3599},
			wantRefresh: "",
		},
		{
			name:        "refresh token rotated",
			reply:       map[string]any{"access_token": "at-2", "refresh_token": "rt-new", "token_type": "Bearer", "expires_in": 3599},
			wantRefresh: "rt-new",
		},
		{
			name:        "no lifetime",
			reply:       map[string]any{"access_token": "at-2", "token_type": "Bearer"},
			wantZeroExp: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, fake := newTestProvider(t, func(w http.ResponseWriter, _ url.Values) {
				writeJSON(w, http.StatusOK, tt.reply)
			})

			grant, err := p.Refresh(context.Background(), "rt-old")
			require.NoError(t, err)
			assert.Equal(t, "at-2", grant.AccessToken)
			assert.Equal(t, tt.wantRefresh, grant.RefreshToken)
			assert.Equal(t, tt.wantZeroExp, grant.Expiry.IsZero())

			require.Len(t, fake.tokenForms, 1)
			assert.Equal(t, "refresh_token", fake.tokenForms[0].Get("grant_type"))
			assert.Equal(t, "rt-old", fake.tokenForms[0].Get("refresh_token"))
		})
	}
}

func TestIdentityProvider_Refresh_ProviderRejects(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, _ url.Values) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "invalid_grant", "error_description": "Token has been expired or revoked.",
		})
	})

	_, err := p.Refresh(context.Background(), "rt-revoked")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTokenRefreshFailed)

	var rerr *domain.TokenRefreshError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "invalid_grant: Token has been expired or revoked.", rerr.Detail)
}

func TestIdentityProvider_Refresh_NoRefreshToken(t *testing.T) {
	p, fake := newTestProvider(t, nil)

	_, err := p.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrTokenRefreshFailed)
	assert.Empty(t, fake.tokenForms)
}

func TestIdentityProvider_UserInfo(t *testing.T) {
	p, _ := newTestProvider(t, nil)

	profile, err := p.UserInfo(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, &domain.GoogleProfile{ID: "g-123", Email: "owner@example.com", Name: "Owner"}, profile)

	_, err = p.UserInfo(context.Background(), "bad-token")
	assert.ErrorIs(t, err, domain.ErrProviderUnauthorized)
}
