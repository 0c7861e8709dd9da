package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driving"
)

// --- Mock implementations shared by the service tests ---

// mockIdentityProvider implements driven.IdentityProvider for testing.
type mockIdentityProvider struct {
	mu           sync.Mutex
	refreshCalls []string
	refreshDelay time.Duration
	refreshFn    func(refreshToken string) (*domain.TokenGrant, error)
	exchangeFn   func(code, verifier string) (*domain.TokenGrant, error)
	profile      *domain.GoogleProfile
	userInfoErr  error
}

var _ driven.IdentityProvider = (*mockIdentityProvider)(nil)

func (m *mockIdentityProvider) AuthCodeURL(state, verifier string) string {
	return "https://accounts.example.com/auth?state=" + state + "&verifier=" + verifier
}

func (m *mockIdentityProvider) Exchange(_ context.Context, code, verifier string) (*domain.TokenGrant, error) {
	if m.exchangeFn != nil {
		return m.exchangeFn(code, verifier)
	}
	return &domain.TokenGrant{AccessToken: "access-" + code, RefreshToken: "refresh-" + code}, nil
}

func (m *mockIdentityProvider) Refresh(_ context.Context, refreshToken string) (*domain.TokenGrant, error) {
	m.mu.Lock()
	m.refreshCalls = append(m.refreshCalls, refreshToken)
	n := len(m.refreshCalls)
	m.mu.Unlock()

	if m.refreshDelay > 0 {
		time.Sleep(m.refreshDelay)
	}
	if m.refreshFn != nil {
		return m.refreshFn(refreshToken)
	}
	return &domain.TokenGrant{AccessToken: "access-" + string(rune('0'+n))}, nil
}

func (m *mockIdentityProvider) UserInfo(_ context.Context, _ string) (*domain.GoogleProfile, error) {
	if m.userInfoErr != nil {
		return nil, m.userInfoErr
	}
	if m.profile != nil {
		p := *m.profile
		return &p, nil
	}
	return &domain.GoogleProfile{ID: "g-1", Email: "owner@example.com", Name: "Owner"}, nil
}

func (m *mockIdentityProvider) refreshCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.refreshCalls)
}

// mockTokenService implements driving.TokenService for testing.
type mockTokenService struct {
	mu           sync.Mutex
	validFn      func(ownerID string) (*domain.Credential, error)
	forceFn      func(ownerID string, stale *domain.Credential) (*domain.Credential, error)
	expiringFn   func(ctx context.Context) (int, error)
	validCalls   int
	forceCalls   int
	expiringRuns int
	lastStale    *domain.Credential
}

var _ driving.TokenService = (*mockTokenService)(nil)

func (m *mockTokenService) Valid(_ context.Context, ownerID string) (*domain.Credential, error) {
	m.mu.Lock()
	m.validCalls++
	m.mu.Unlock()
	if m.validFn != nil {
		return m.validFn(ownerID)
	}
	return &domain.Credential{OwnerID: ownerID, AccessToken: "tok"}, nil
}

func (m *mockTokenService) ForceRefresh(_ context.Context, ownerID string, stale *domain.Credential) (*domain.Credential, error) {
	m.mu.Lock()
	m.forceCalls++
	m.lastStale = stale
	m.mu.Unlock()
	if m.forceFn != nil {
		return m.forceFn(ownerID, stale)
	}
	return &domain.Credential{OwnerID: ownerID, AccessToken: "tok-refreshed"}, nil
}

func (m *mockTokenService) RefreshExpiring(ctx context.Context) (int, error) {
	m.mu.Lock()
	m.expiringRuns++
	m.mu.Unlock()
	if m.expiringFn != nil {
		return m.expiringFn(ctx)
	}
	return 0, nil
}

func (m *mockTokenService) runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiringRuns
}

// composedMessage is one call to mockComposer.Compose.
type composedMessage struct {
	To      string
	Subject string
	Body    string
	Date    time.Time
}

// mockComposer implements driven.MessageComposer. The raw message it
// returns is "raw:" followed by the recipient address.
type mockComposer struct {
	mu       sync.Mutex
	messages []composedMessage
	failFor  map[string]error
}

var _ driven.MessageComposer = (*mockComposer)(nil)

func (m *mockComposer) Compose(to, subject, htmlBody string, date time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[to]; err != nil {
		return "", err
	}
	m.messages = append(m.messages, composedMessage{To: to, Subject: subject, Body: htmlBody, Date: date})
	return "raw:" + to, nil
}

// mockSender implements driven.MailSender.
type mockSender struct {
	mu      sync.Mutex
	sent    []string
	tokens  []string
	failFor map[string]error
}

var _ driven.MailSender = (*mockSender)(nil)

func (m *mockSender) Send(_ context.Context, accessToken, raw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	to := strings.TrimPrefix(raw, "raw:")
	if err := m.failFor[to]; err != nil {
		return err
	}
	m.sent = append(m.sent, to)
	m.tokens = append(m.tokens, accessToken)
	return nil
}

// mockEventLister implements driven.EventLister. Responses are keyed by
// access token.
type mockEventLister struct {
	mu     sync.Mutex
	calls  []string
	events map[string][]domain.CalendarEvent
	errs   map[string]error
}

var _ driven.EventLister = (*mockEventLister)(nil)

func (m *mockEventLister) ListEvents(
	_ context.Context,
	accessToken, calendarID string,
	_, _ time.Time,
) ([]domain.CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, accessToken)
	if calendarID != domain.PrimaryCalendarID {
		return nil, errors.New("unexpected calendar " + calendarID)
	}
	if err := m.errs[accessToken]; err != nil {
		return nil, err
	}
	return m.events[accessToken], nil
}
