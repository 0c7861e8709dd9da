package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// --- Mocks for the driving ports used by commands ---

type mockMail struct {
	results    []domain.SendResult
	err        error
	owner      string
	req        domain.SendRequest
	templateID string
}

func (m *mockMail) SendBulk(_ context.Context, ownerID string, req domain.SendRequest) ([]domain.SendResult, error) {
	m.owner, m.req = ownerID, req
	return m.results, m.err
}

func (m *mockMail) SendTemplate(_ context.Context, ownerID, templateID string, clientIDs []string) ([]domain.SendResult, error) {
	m.owner, m.templateID = ownerID, templateID
	m.req = domain.SendRequest{RecipientIDs: clientIDs}
	return m.results, m.err
}

type mockCalendar struct {
	events   []domain.CalendarEvent
	err      error
	owner    string
	from, to time.Time
}

func (m *mockCalendar) ListEvents(_ context.Context, ownerID string, from, to time.Time) ([]domain.CalendarEvent, error) {
	m.owner, m.from, m.to = ownerID, from, to
	return m.events, m.err
}

type mockTokens struct {
	forced []string
	err    error
}

func (m *mockTokens) Valid(_ context.Context, ownerID string) (*domain.Credential, error) {
	return &domain.Credential{OwnerID: ownerID, AccessToken: "tok"}, m.err
}

func (m *mockTokens) ForceRefresh(_ context.Context, ownerID string, _ *domain.Credential) (*domain.Credential, error) {
	m.forced = append(m.forced, ownerID)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Credential{
		OwnerID:     ownerID,
		AccessToken: "tok-2",
		Expiry:      time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC),
	}, nil
}

func (m *mockTokens) RefreshExpiring(_ context.Context) (int, error) {
	return 0, m.err
}

type mockScheduler struct {
	result *domain.TaskResult
	err    error
	ran    []string
}

func (m *mockScheduler) Start(_ context.Context) error { return nil }
func (m *mockScheduler) Stop() error                   { return nil }

func (m *mockScheduler) RunNow(_ context.Context, taskID string) (*domain.TaskResult, error) {
	m.ran = append(m.ran, taskID)
	return m.result, m.err
}

// --- Harness ---

type cliHarness struct {
	app        *app
	mail       *mockMail
	calendar   *mockCalendar
	tokens     *mockTokens
	scheduler  *mockScheduler
	configFile string
}

// setupCLITest points --config at a temp dir and swaps the service wiring
// for mocks. Flag values persist between Execute calls, so they are reset.
func setupCLITest(t *testing.T) *cliHarness {
	t.Helper()
	h := &cliHarness{
		mail:       &mockMail{},
		calendar:   &mockCalendar{},
		tokens:     &mockTokens{},
		scheduler:  &mockScheduler{},
		configFile: filepath.Join(t.TempDir(), "config.toml"),
	}
	h.app = &app{
		mail:      h.mail,
		calendar:  h.calendar,
		tokens:    h.tokens,
		scheduler: h.scheduler,
	}

	oldNewApp := newApp
	newApp = func(s domain.Settings) (*app, error) {
		h.app.settings = s
		return h.app, nil
	}
	t.Cleanup(func() {
		newApp = oldNewApp
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	resetFlags(rootCmd)
	return h
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the root command with args and returns combined output.
func (h *cliHarness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--config", h.configFile}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}
