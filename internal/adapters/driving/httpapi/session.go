package httpapi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driving"
)

// Cookie names.
const (
	SessionCookie = "clientdesk_session"
	loginCookie   = "clientdesk_login"
)

// loginTTL bounds how long a started Google login may take.
const loginTTL = 10 * time.Minute

const userLocal = "user"

// Sessions issues and verifies signed tokens.
type Sessions struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions creates a Sessions from the session settings.
func NewSessions(cfg domain.SessionSettings) *Sessions {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Sessions{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the session lifetime.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Issue returns a session token for userID.
func (s *Sessions) Issue(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks a session token and returns its subject.
func (s *Sessions) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	if err := s.parse(token, &claims); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: session has no subject", domain.ErrUnauthenticated)
	}
	return claims.Subject, nil
}

// loginClaims carries the PKCE verifier between login and callback.
type loginClaims struct {
	State    string `json:"state"`
	Verifier string `json:"verifier"`
	Next     string `json:"next,omitempty"`
	jwt.RegisteredClaims
}

func (s *Sessions) issueLogin(ch *domain.LoginChallenge, next string) (string, error) {
	now := s.now()
	claims := loginClaims{
		State:    ch.State,
		Verifier: ch.Verifier,
		Next:     next,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(loginTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Sessions) verifyLogin(token, state string) (*loginClaims, error) {
	var claims loginClaims
	if err := s.parse(token, &claims); err != nil {
		return nil, err
	}
	if state == "" || claims.State != state {
		return nil, fmt.Errorf("%w: state mismatch", domain.ErrUnauthenticated)
	}
	return &claims, nil
}

func (s *Sessions) parse(token string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	return nil
}

// requireSession resolves the caller from the bearer header or the session
// cookie and stores the user in the request locals.
func requireSession(sessions *Sessions, auth driving.AuthService) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Cookies(SessionCookie)
		}
		if token == "" {
			return fmt.Errorf("%w: missing session", domain.ErrUnauthenticated)
		}

		userID, err := sessions.Verify(token)
		if err != nil {
			return err
		}
		user, err := auth.CurrentUser(c.Context(), userID)
		if err != nil {
			return err
		}

		c.Locals(userLocal, user)
		return c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// currentUser returns the user stored by requireSession.
func currentUser(c fiber.Ctx) (*domain.User, error) {
	user, ok := c.Locals(userLocal).(*domain.User)
	if !ok || user == nil {
		return nil, errors.New("session middleware not installed")
	}
	return user, nil
}
