package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
)

// DefaultUserInfoURL is Google's OAuth2 v2 profile endpoint.
const DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Ensure IdentityProvider implements the interface.
var _ driven.IdentityProvider = (*IdentityProvider)(nil)

// OAuthConfig holds the OAuth app credentials.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// Endpoint overrides Google's authorization and token URLs when set.
	Endpoint oauth2.Endpoint
	// UserInfoURL overrides DefaultUserInfoURL when set.
	UserInfoURL string
	// HTTPClient is used for token and profile requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// IdentityProvider implements driven.IdentityProvider against Google's OAuth server.
type IdentityProvider struct {
	cfg         *oauth2.Config
	userInfoURL string
	client      *http.Client
}

// NewIdentityProvider creates an IdentityProvider.
func NewIdentityProvider(c OAuthConfig) *IdentityProvider {
	endpoint := c.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = googleoauth.Endpoint
	}
	userInfoURL := c.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = DefaultUserInfoURL
	}
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return &IdentityProvider{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Scopes:       c.Scopes,
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
		client:      client,
	}
}

// AuthCodeURL returns the consent URL. Offline access and a forced consent
// prompt make Google issue a refresh token on every login.
func (p *IdentityProvider) AuthCodeURL(state, verifier string) string {
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline, oauth2.ApprovalForce}
	if verifier != "" {
		opts = append(opts, oauth2.S256ChallengeOption(verifier))
	}
	return p.cfg.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for tokens.
func (p *IdentityProvider) Exchange(ctx context.Context, code, verifier string) (*domain.TokenGrant, error) {
	var opts []oauth2.AuthCodeOption
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	tok, err := p.cfg.Exchange(p.httpContext(ctx), code, opts...)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	return &domain.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, nil
}

// Refresh obtains a new access token. The grant carries a refresh token
// only when Google rotated it.
func (p *IdentityProvider) Refresh(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
	if refreshToken == "" {
		return nil, &domain.TokenRefreshError{Detail: "no refresh token stored"}
	}

	tok, err := p.cfg.TokenSource(p.httpContext(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, &domain.TokenRefreshError{Detail: retrieveDetail(err), Err: err}
	}

	grant := &domain.TokenGrant{
		AccessToken: tok.AccessToken,
		Expiry:      tok.Expiry,
	}
	if tok.RefreshToken != refreshToken {
		grant.RefreshToken = tok.RefreshToken
	}
	return grant, nil
}

// UserInfo fetches the profile behind accessToken.
func (p *IdentityProvider) UserInfo(ctx context.Context, accessToken string) (*domain.GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("fetch user info: %w", domain.ErrProviderUnauthorized)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("user info request failed with status %d", resp.StatusCode)
	}

	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	if info.ID == "" {
		return nil, errors.New("user info response has no id")
	}

	return &domain.GoogleProfile{ID: info.ID, Email: info.Email, Name: info.Name}, nil
}

func (p *IdentityProvider) httpContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.client)
}

// retrieveDetail extracts Google's reason from a token endpoint failure.
func retrieveDetail(err error) string {
	var rerr *oauth2.RetrieveError
	if !errors.As(err, &rerr) {
		return err.Error()
	}
	switch {
	case rerr.ErrorCode != "" && rerr.ErrorDescription != "":
		return rerr.ErrorCode + ": " + rerr.ErrorDescription
	case rerr.ErrorCode != "":
		return rerr.ErrorCode
	default:
		if body := strings.TrimSpace(string(rerr.Body)); body != "" {
			return body
		}
		return err.Error()
	}
}
