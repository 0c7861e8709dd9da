package driving

import (
	"context"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// AuthService runs the Google login flow.
type AuthService interface {
	// BeginLogin creates the state, PKCE verifier and consent URL.
	BeginLogin() (*domain.LoginChallenge, error)

	// CompleteLogin exchanges the code, records the user and stores the
	// token pair. A storage failure for the tokens does not fail the login.
	CompleteLogin(ctx context.Context, code, verifier string) (*domain.LoginResult, error)

	// CurrentUser returns the user behind a session subject.
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}
