package domain

import (
	"errors"
	"time"
)

// Storage drivers.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Default Google scopes requested at login.
var DefaultGoogleScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/calendar.readonly",
}

// Settings is the full runtime configuration.
type Settings struct {
	Server    ServerSettings
	Google    GoogleSettings
	Session   SessionSettings
	Storage   StorageSettings
	Mail      MailSettings
	Scheduler SchedulerSettings
	HTTP      HTTPSettings
	Log       LogSettings
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Port        int
	BaseURL     string
	FrontendURL string
	CORSOrigins []string
}

// GoogleSettings holds the OAuth client registration.
type GoogleSettings struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// SessionSettings configures session tokens.
type SessionSettings struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Secure bool
}

// StorageSettings selects and locates the persistence backend.
type StorageSettings struct {
	Driver  string
	DataDir string
}

// MailSettings tunes mail-merge rendering and Gmail pacing.
type MailSettings struct {
	DateLayout string
	Timezone   string
	GmailRPS   float64
	GmailBurst int
}

// SchedulerSettings configures the proactive refresh task.
type SchedulerSettings struct {
	Enabled         bool
	RefreshInterval time.Duration
	RefreshLead     time.Duration
}

// HTTPSettings configures per-client request limits.
type HTTPSettings struct {
	RateLimit      int
	RateWindow     time.Duration
	RequestTimeout time.Duration
}

// LogSettings configures the process logger.
type LogSettings struct {
	Level  string
	Format string
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	sched := DefaultSchedulerConfig()
	return Settings{
		Server: ServerSettings{
			Port:        8080,
			BaseURL:     "http://localhost:8080",
			FrontendURL: "http://localhost:3000",
		},
		Google: GoogleSettings{
			RedirectURL: "http://localhost:8080/auth/callback",
			Scopes:      append([]string(nil), DefaultGoogleScopes...),
		},
		Session: SessionSettings{
			Issuer: "clientdesk",
			TTL:    24 * time.Hour,
		},
		Storage: StorageSettings{Driver: StorageSQLite},
		Mail: MailSettings{
			DateLayout: DefaultDateLayout,
			Timezone:   "UTC",
			GmailRPS:   2.0,
			GmailBurst: 5,
		},
		Scheduler: SchedulerSettings{
			Enabled:         sched.Enabled,
			RefreshInterval: sched.RefreshInterval,
			RefreshLead:     sched.RefreshLead,
		},
		HTTP: HTTPSettings{
			RateLimit:      120,
			RateWindow:     time.Minute,
			RequestTimeout: 30 * time.Second,
		},
		Log: LogSettings{Level: "info", Format: "text"},
	}
}

// Location resolves the mail timezone, falling back to UTC.
func (m MailSettings) Location() *time.Location {
	if m.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SchedulerConfig converts the settings into the scheduler's configuration.
func (s SchedulerSettings) SchedulerConfig() SchedulerConfig {
	cfg := DefaultSchedulerConfig()
	cfg.Enabled = s.Enabled
	if s.RefreshInterval > 0 {
		cfg.RefreshInterval = s.RefreshInterval
	}
	if s.RefreshLead > 0 {
		cfg.RefreshLead = s.RefreshLead
	}
	return cfg
}

// ValidateForServe checks the settings needed to run the HTTP server.
func (s Settings) ValidateForServe() error {
	var errs []error
	if s.Google.ClientID == "" || s.Google.ClientSecret == "" {
		errs = append(errs, errors.New("google client_id and client_secret are required"))
	}
	if len(s.Session.Secret) < 32 {
		errs = append(errs, errors.New("session secret must be at least 32 bytes"))
	}
	switch s.Storage.Driver {
	case StorageSQLite, StorageMemory:
	default:
		errs = append(errs, errors.New("storage driver must be sqlite or memory"))
	}
	return errors.Join(errs...)
}
