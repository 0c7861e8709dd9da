package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// newTestStore returns a store for a file in a temp dir with the given
// environment instead of the process one.
func newTestStore(t *testing.T, env map[string]string) *SettingsStore {
	t.Helper()
	store, err := NewSettingsStore(filepath.Join(t.TempDir(), DefaultFileName))
	require.NoError(t, err)
	store.lookup = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	return store
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestNewSettingsStore_DefaultPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	store, err := NewSettingsStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".clientdesk", "config.toml"), store.Path())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	store := newTestStore(t, nil)

	settings, err := store.Load()
	require.NoError(t, err)

	want := domain.DefaultSettings()
	assert.Equal(t, want.Server, settings.Server)
	assert.Equal(t, want.Scheduler, settings.Scheduler)
	assert.Equal(t, domain.StorageSQLite, settings.Storage.Driver)
	assert.Equal(t, filepath.Dir(store.Path()), settings.Storage.DataDir)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	store := newTestStore(t, nil)
	writeFile(t, store.Path(), `
[server]
port = 9090
cors_origins = ["https://app.example.com"]

[google]
client_id = "id-from-file"
client_secret = "secret-from-file"

[session]
ttl = "12h"
secure = true

[storage]
driver = "memory"
data_dir = "/var/lib/clientdesk"

[mail]
timezone = "Europe/Berlin"
gmail_rps = 0.5

[scheduler]
enabled = false
refresh_interval = "30m"

[http]
rate_window = "30s"

[log]
level = "debug"
format = "json"
`)

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, settings.Server.Port)
	assert.Equal(t, []string{"https://app.example.com"}, settings.Server.CORSOrigins)
	assert.Equal(t, "http://localhost:3000", settings.Server.FrontendURL)
	assert.Equal(t, "id-from-file", settings.Google.ClientID)
	assert.Equal(t, domain.DefaultGoogleScopes, settings.Google.Scopes)
	assert.Equal(t, 12*time.Hour, settings.Session.TTL)
	assert.True(t, settings.Session.Secure)
	assert.Equal(t, domain.StorageMemory, settings.Storage.Driver)
	assert.Equal(t, "/var/lib/clientdesk", settings.Storage.DataDir)
	assert.Equal(t, "Europe/Berlin", settings.Mail.Timezone)
	assert.Equal(t, 0.5, settings.Mail.GmailRPS)
	assert.Equal(t, 5, settings.Mail.GmailBurst)
	assert.False(t, settings.Scheduler.Enabled)
	assert.Equal(t, 30*time.Minute, settings.Scheduler.RefreshInterval)
	assert.Equal(t, 10*time.Minute, settings.Scheduler.RefreshLead)
	assert.Equal(t, 30*time.Second, settings.HTTP.RateWindow)
	assert.Equal(t, "debug", settings.Log.Level)
	assert.Equal(t, "json", settings.Log.Format)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	store := newTestStore(t, map[string]string{
		EnvPort:            "7000",
		EnvGoogleClientID:  "id-from-env",
		EnvSessionSecret:   "  s3cret  ",
		EnvCORSOrigins:     "https://a.example.com, ,https://b.example.com",
		EnvSchedulerEnable: "true",
		EnvRefreshLead:     "5m",
		EnvLogLevel:        "",
	})
	writeFile(t, store.Path(), `
[google]
client_id = "id-from-file"

[scheduler]
enabled = false

[log]
level = "warn"
`)

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, 7000, settings.Server.Port)
	assert.Equal(t, "id-from-env", settings.Google.ClientID)
	assert.Equal(t, "s3cret", settings.Session.Secret)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, settings.Server.CORSOrigins)
	assert.True(t, settings.Scheduler.Enabled)
	assert.Equal(t, 5*time.Minute, settings.Scheduler.RefreshLead)
	// Empty variables do not override.
	assert.Equal(t, "warn", settings.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantMsg string
	}{
		{
			name:    "malformed toml",
			file:    "[server\nport = 1",
			wantMsg: "parsing",
		},
		{
			name:    "bad duration in file",
			file:    "[scheduler]\nrefresh_lead = \"soon\"",
			wantMsg: "scheduler.refresh_lead",
		},
		{
			name:    "negative duration in file",
			file:    "[session]\nttl = \"-1h\"",
			wantMsg: "session.ttl",
		},
		{
			name:    "bad port in env",
			env:     map[string]string{EnvPort: "eighty"},
			wantMsg: EnvPort,
		},
		{
			name:    "bad boolean in env",
			env:     map[string]string{EnvSchedulerEnable: "maybe"},
			wantMsg: EnvSchedulerEnable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, tt.env)
			if tt.file != "" {
				writeFile(t, store.Path(), tt.file)
			}
			_, err := store.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store, err := NewSettingsStore(filepath.Join(dir, DefaultFileName))
	require.NoError(t, err)
	store.lookup = func(string) (string, bool) { return "", false }

	settings := domain.DefaultSettings()
	settings.Server.Port = 8181
	settings.Scheduler.Enabled = false
	settings.Scheduler.RefreshInterval = 20 * time.Minute
	settings.Storage.DataDir = "/data"
	require.NoError(t, store.Save(settings))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("sets unset variables only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		writeFile(t, path, "CLIENTDESK_TEST_A=from-file\nCLIENTDESK_TEST_B=from-file\n")
		t.Setenv("CLIENTDESK_TEST_B", "from-env")
		t.Cleanup(func() { _ = os.Unsetenv("CLIENTDESK_TEST_A") })

		require.NoError(t, LoadDotEnv(path))
		assert.Equal(t, "from-file", os.Getenv("CLIENTDESK_TEST_A"))
		assert.Equal(t, "from-env", os.Getenv("CLIENTDESK_TEST_B"))
	})
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	store := newTestStore(t, nil)
	writeFile(t, store.Path(), "[log]\nlevel = \"info\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan domain.Settings, 4)
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func(s domain.Settings) { changes <- s })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	writeFile(t, store.Path(), "[log]\nlevel = \"debug\"\n")

	select {
	case s := <-changes:
		assert.Equal(t, "debug", s.Log.Level)
	case <-time.After(3 * time.Second):
		t.Fatal("no change observed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
