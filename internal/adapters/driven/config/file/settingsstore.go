package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// DefaultFileName is the settings file name inside the config directory.
const DefaultFileName = "config.toml"

// SettingsStore reads and writes the TOML settings file.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
	lookup   func(string) (string, bool)
}

// NewSettingsStore creates a store for path.
// If path is empty, defaults to ~/.clientdesk/config.toml.
func NewSettingsStore(path string) (*SettingsStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".clientdesk", DefaultFileName)
	}
	return &SettingsStore{filePath: path, lookup: os.LookupEnv}, nil
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// Load returns the defaults overlaid with the file and the environment.
// A missing file is not an error.
func (s *SettingsStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return settings, err
	default:
		var f fileSettings
		if err := toml.Unmarshal(data, &f); err != nil {
			return settings, fmt.Errorf("parsing %s: %w", s.filePath, err)
		}
		if err := f.apply(&settings); err != nil {
			return settings, fmt.Errorf("parsing %s: %w", s.filePath, err)
		}
	}

	if err := applyEnv(&settings, s.lookup); err != nil {
		return settings, err
	}
	if settings.Storage.DataDir == "" {
		settings.Storage.DataDir = filepath.Dir(s.filePath)
	}
	return settings, nil
}

// Save writes settings to the file with owner-only permissions.
// Secrets are written as given; callers decide whether to blank them.
func (s *SettingsStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return err
	}
	data, err := toml.Marshal(fromSettings(settings))
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// fileSettings is the on-disk layout. Durations are strings such as "45m".
type fileSettings struct {
	Server struct {
		Port        int      `toml:"port,omitempty"`
		BaseURL     string   `toml:"base_url,omitempty"`
		FrontendURL string   `toml:"frontend_url,omitempty"`
		CORSOrigins []string `toml:"cors_origins,omitempty"`
	} `toml:"server"`
	Google struct {
		ClientID     string   `toml:"client_id,omitempty"`
		ClientSecret string   `toml:"client_secret,omitempty"`
		RedirectURL  string   `toml:"redirect_url,omitempty"`
		Scopes       []string `toml:"scopes,omitempty"`
	} `toml:"google"`
	Session struct {
		Secret string `toml:"secret,omitempty"`
		Issuer string `toml:"issuer,omitempty"`
		TTL    string `toml:"ttl,omitempty"`
		Secure *bool  `toml:"secure"`
	} `toml:"session"`
	Storage struct {
		Driver  string `toml:"driver,omitempty"`
		DataDir string `toml:"data_dir,omitempty"`
	} `toml:"storage"`
	Mail struct {
		DateLayout string  `toml:"date_layout,omitempty"`
		Timezone   string  `toml:"timezone,omitempty"`
		GmailRPS   float64 `toml:"gmail_rps,omitempty"`
		GmailBurst int     `toml:"gmail_burst,omitempty"`
	} `toml:"mail"`
	Scheduler struct {
		Enabled         *bool  `toml:"enabled"`
		RefreshInterval string `toml:"refresh_interval,omitempty"`
		RefreshLead     string `toml:"refresh_lead,omitempty"`
	} `toml:"scheduler"`
	HTTP struct {
		RateLimit      int    `toml:"rate_limit,omitempty"`
		RateWindow     string `toml:"rate_window,omitempty"`
		RequestTimeout string `toml:"request_timeout,omitempty"`
	} `toml:"http"`
	Log struct {
		Level  string `toml:"level,omitempty"`
		Format string `toml:"format,omitempty"`
	} `toml:"log"`
}

// apply copies every field present in the file onto s.
func (f *fileSettings) apply(s *domain.Settings) error {
	setInt(&s.Server.Port, f.Server.Port)
	setString(&s.Server.BaseURL, f.Server.BaseURL)
	setString(&s.Server.FrontendURL, f.Server.FrontendURL)
	if len(f.Server.CORSOrigins) > 0 {
		s.Server.CORSOrigins = f.Server.CORSOrigins
	}

	setString(&s.Google.ClientID, f.Google.ClientID)
	setString(&s.Google.ClientSecret, f.Google.ClientSecret)
	setString(&s.Google.RedirectURL, f.Google.RedirectURL)
	if len(f.Google.Scopes) > 0 {
		s.Google.Scopes = f.Google.Scopes
	}

	setString(&s.Session.Secret, f.Session.Secret)
	setString(&s.Session.Issuer, f.Session.Issuer)
	if f.Session.Secure != nil {
		s.Session.Secure = *f.Session.Secure
	}

	setString(&s.Storage.Driver, f.Storage.Driver)
	setString(&s.Storage.DataDir, f.Storage.DataDir)

	setString(&s.Mail.DateLayout, f.Mail.DateLayout)
	setString(&s.Mail.Timezone, f.Mail.Timezone)
	if f.Mail.GmailRPS > 0 {
		s.Mail.GmailRPS = f.Mail.GmailRPS
	}
	setInt(&s.Mail.GmailBurst, f.Mail.GmailBurst)

	if f.Scheduler.Enabled != nil {
		s.Scheduler.Enabled = *f.Scheduler.Enabled
	}

	setInt(&s.HTTP.RateLimit, f.HTTP.RateLimit)

	setString(&s.Log.Level, f.Log.Level)
	setString(&s.Log.Format, f.Log.Format)

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"session.ttl", f.Session.TTL, &s.Session.TTL},
		{"scheduler.refresh_interval", f.Scheduler.RefreshInterval, &s.Scheduler.RefreshInterval},
		{"scheduler.refresh_lead", f.Scheduler.RefreshLead, &s.Scheduler.RefreshLead},
		{"http.rate_window", f.HTTP.RateWindow, &s.HTTP.RateWindow},
		{"http.request_timeout", f.HTTP.RequestTimeout, &s.HTTP.RequestTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := parseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = v
	}
	return nil
}

func fromSettings(s domain.Settings) fileSettings {
	var f fileSettings
	f.Server.Port = s.Server.Port
	f.Server.BaseURL = s.Server.BaseURL
	f.Server.FrontendURL = s.Server.FrontendURL
	f.Server.CORSOrigins = s.Server.CORSOrigins
	f.Google.ClientID = s.Google.ClientID
	f.Google.ClientSecret = s.Google.ClientSecret
	f.Google.RedirectURL = s.Google.RedirectURL
	f.Google.Scopes = s.Google.Scopes
	f.Session.Secret = s.Session.Secret
	f.Session.Issuer = s.Session.Issuer
	f.Session.TTL = s.Session.TTL.String()
	f.Session.Secure = &s.Session.Secure
	f.Storage.Driver = s.Storage.Driver
	f.Storage.DataDir = s.Storage.DataDir
	f.Mail.DateLayout = s.Mail.DateLayout
	f.Mail.Timezone = s.Mail.Timezone
	f.Mail.GmailRPS = s.Mail.GmailRPS
	f.Mail.GmailBurst = s.Mail.GmailBurst
	f.Scheduler.Enabled = &s.Scheduler.Enabled
	f.Scheduler.RefreshInterval = s.Scheduler.RefreshInterval.String()
	f.Scheduler.RefreshLead = s.Scheduler.RefreshLead.String()
	f.HTTP.RateLimit = s.HTTP.RateLimit
	f.HTTP.RateWindow = s.HTTP.RateWindow.String()
	f.HTTP.RequestTimeout = s.HTTP.RequestTimeout.String()
	f.Log.Level = s.Log.Level
	f.Log.Format = s.Log.Format
	return f
}

func parseDuration(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", raw)
	}
	return d, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}
