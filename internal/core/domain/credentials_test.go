package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredential_IsExpiredAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{"future", now.Add(time.Minute), false},
		{"exactly now", now, true},
		{"past", now.Add(-time.Second), true},
		{"zero", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Credential{Expiry: tt.expiry}
			assert.Equal(t, tt.want, c.IsExpiredAt(now))
		})
	}
}

func TestCredentialUpdate_Apply(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	c := &Credential{OwnerID: "o", AccessToken: "old", RefreshToken: "rt"}

	access := "new"
	CredentialUpdate{AccessToken: &access, Expiry: &expiry}.Apply(c)

	assert.Equal(t, "new", c.AccessToken)
	assert.Equal(t, "rt", c.RefreshToken)
	assert.Equal(t, expiry, c.Expiry)
}

func TestTokenGrant_ExpiryOr(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	g := &TokenGrant{AccessToken: "a"}
	assert.Equal(t, now.Add(time.Hour), g.ExpiryOr(now))

	g.Expiry = now.Add(30 * time.Minute)
	assert.Equal(t, now.Add(30*time.Minute), g.ExpiryOr(now))
}
