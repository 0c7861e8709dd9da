package domain

import "time"

// User is an authenticated person who owns clients, templates and a Credential.
type User struct {
	ID        string    `json:"id"`
	GoogleID  string    `json:"google_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GoogleProfile is the subset of Google userinfo needed to identify a user.
type GoogleProfile struct {
	ID    string
	Email string
	Name  string
}

// LoginChallenge is the state needed to complete an authorization-code flow.
type LoginChallenge struct {
	// URL is where the browser is sent to grant consent.
	URL string
	// State guards the callback against CSRF.
	State string
	// Verifier is the PKCE code verifier paired with the challenge in URL.
	Verifier string
}

// LoginResult is the outcome of a completed Google login.
type LoginResult struct {
	User *User
	// CredentialStored is false when the token pair could not be persisted.
	// The login itself still succeeds; mail and calendar need a reconnect.
	CredentialStored bool
}
