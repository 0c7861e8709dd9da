package domain

import "time"

// DefaultTokenLifetime is assumed when the provider omits an expiry.
const DefaultTokenLifetime = time.Hour

// Credential stores the Google OAuth tokens for one owner.
// There is at most one Credential per owner.
type Credential struct {
	// OwnerID is the user this credential belongs to.
	OwnerID string `json:"owner_id"`
	// AccessToken is the bearer token for Gmail and Calendar calls.
	AccessToken string `json:"-"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"-"`
	// Expiry is when the access token stops being accepted.
	Expiry time.Time `json:"expiry"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpiredAt reports whether the access token is unusable at now.
// A token expiring exactly at now counts as expired.
func (c *Credential) IsExpiredAt(now time.Time) bool {
	return !now.Before(c.Expiry)
}

// HasRefreshToken returns true if a refresh token is available.
func (c *Credential) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

// CredentialUpdate is a partial update of a stored Credential.
// Nil fields are left untouched.
type CredentialUpdate struct {
	AccessToken  *string
	RefreshToken *string
	Expiry       *time.Time

	// IfExpiry, when set, makes the update conditional on the stored expiry
	// still equalling this value. A mismatch yields ErrConflict.
	IfExpiry *time.Time
}

// Apply copies the set fields of u onto c.
func (u CredentialUpdate) Apply(c *Credential) {
	if u.AccessToken != nil {
		c.AccessToken = *u.AccessToken
	}
	if u.RefreshToken != nil {
		c.RefreshToken = *u.RefreshToken
	}
	if u.Expiry != nil {
		c.Expiry = *u.Expiry
	}
}

// TokenGrant is what the identity provider returns from a code exchange or refresh.
type TokenGrant struct {
	AccessToken string
	// RefreshToken is empty when the provider did not rotate it.
	RefreshToken string
	// Expiry is zero when the provider gave no lifetime.
	Expiry time.Time
}

// ExpiryOr returns the grant expiry, or now plus DefaultTokenLifetime when absent.
func (g *TokenGrant) ExpiryOr(now time.Time) time.Time {
	if g.Expiry.IsZero() {
		return now.Add(DefaultTokenLifetime)
	}
	return g.Expiry
}
