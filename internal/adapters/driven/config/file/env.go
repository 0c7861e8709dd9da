package file

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// Environment variables that override the settings file.
const (
	EnvPort            = "CLIENTDESK_PORT"
	EnvBaseURL         = "CLIENTDESK_BASE_URL"
	EnvFrontendURL     = "CLIENTDESK_FRONTEND_URL"
	EnvCORSOrigins     = "CLIENTDESK_CORS_ORIGINS"
	EnvGoogleClientID  = "GOOGLE_CLIENT_ID"
	EnvGoogleSecret    = "GOOGLE_CLIENT_SECRET"
	EnvGoogleRedirect  = "GOOGLE_REDIRECT_URL"
	EnvSessionSecret   = "CLIENTDESK_SESSION_SECRET"
	EnvSessionTTL      = "CLIENTDESK_SESSION_TTL"
	EnvSessionSecure   = "CLIENTDESK_SESSION_SECURE"
	EnvStorageDriver   = "CLIENTDESK_STORAGE_DRIVER"
	EnvDataDir         = "CLIENTDESK_DATA_DIR"
	EnvMailTimezone    = "CLIENTDESK_MAIL_TIMEZONE"
	EnvMailDateLayout  = "CLIENTDESK_MAIL_DATE_LAYOUT"
	EnvSchedulerEnable = "CLIENTDESK_SCHEDULER_ENABLED"
	EnvRefreshInterval = "CLIENTDESK_REFRESH_INTERVAL"
	EnvRefreshLead     = "CLIENTDESK_REFRESH_LEAD"
	EnvRateLimit       = "CLIENTDESK_RATE_LIMIT"
	EnvLogLevel        = "CLIENTDESK_LOG_LEVEL"
	EnvLogFormat       = "CLIENTDESK_LOG_FORMAT"
)

// LoadDotEnv loads variables from the given .env files, or ./.env when none
// are named. Missing files are ignored and existing variables win.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// applyEnv overlays environment variables onto s.
func applyEnv(s *domain.Settings, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(v)
		return v, v != ""
	}

	strs := map[string]*string{
		EnvBaseURL:        &s.Server.BaseURL,
		EnvFrontendURL:    &s.Server.FrontendURL,
		EnvGoogleClientID: &s.Google.ClientID,
		EnvGoogleSecret:   &s.Google.ClientSecret,
		EnvGoogleRedirect: &s.Google.RedirectURL,
		EnvSessionSecret:  &s.Session.Secret,
		EnvStorageDriver:  &s.Storage.Driver,
		EnvDataDir:        &s.Storage.DataDir,
		EnvMailTimezone:   &s.Mail.Timezone,
		EnvMailDateLayout: &s.Mail.DateLayout,
		EnvLogLevel:       &s.Log.Level,
		EnvLogFormat:      &s.Log.Format,
	}
	for key, dst := range strs {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	if v, ok := get(EnvCORSOrigins); ok {
		s.Server.CORSOrigins = splitList(v)
	}

	ints := map[string]*int{
		EnvPort:      &s.Server.Port,
		EnvRateLimit: &s.HTTP.RateLimit,
	}
	bools := map[string]*bool{
		EnvSessionSecure:   &s.Session.Secure,
		EnvSchedulerEnable: &s.Scheduler.Enabled,
	}
	durations := map[string]*time.Duration{
		EnvSessionTTL:      &s.Session.TTL,
		EnvRefreshInterval: &s.Scheduler.RefreshInterval,
		EnvRefreshLead:     &s.Scheduler.RefreshLead,
	}

	var errs []error
	for key, dst := range ints {
		if v, ok := get(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				errs = append(errs, fmt.Errorf("%s: invalid positive integer %q", key, v))
				continue
			}
			*dst = n
		}
	}
	for key, dst := range bools {
		if v, ok := get(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid boolean %q", key, v))
				continue
			}
			*dst = b
		}
	}
	for key, dst := range durations {
		if v, ok := get(key); ok {
			d, err := parseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				continue
			}
			*dst = d
		}
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
