package cli

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/clientdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/clientdesk/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/clientdesk/internal/connectors/google"
	"github.com/custodia-labs/clientdesk/internal/connectors/google/calendar"
	"github.com/custodia-labs/clientdesk/internal/connectors/google/gmail"
	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driving"
	"github.com/custodia-labs/clientdesk/internal/core/services"
	"github.com/custodia-labs/clientdesk/internal/logger"
)

// app holds the services wired for one command run.
type app struct {
	settings  domain.Settings
	auth      driving.AuthService
	clients   driving.ClientService
	templates driving.TemplateService
	mail      driving.MailMergeService
	calendar  driving.CalendarService
	tokens    driving.TokenService
	scheduler driving.Scheduler
	closers   []func() error
}

// newApp is replaced in tests.
var newApp = buildApp

// Close releases the stores in reverse order of opening.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

type stores struct {
	users     driven.UserStore
	creds     driven.CredentialStore
	clients   driven.ClientStore
	templates driven.TemplateStore
	scheduler driven.SchedulerStore
}

func buildApp(settings domain.Settings) (*app, error) {
	a := &app{settings: settings}

	var st stores
	switch settings.Storage.Driver {
	case domain.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on exit")
		st = stores{
			users:     memory.NewUserStore(),
			creds:     memory.NewCredentialStore(),
			clients:   memory.NewClientStore(),
			templates: memory.NewTemplateStore(),
			scheduler: memory.NewSchedulerStore(),
		}
	case domain.StorageSQLite, "":
		db, err := sqlite.NewStore(settings.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		logger.Debug("opened database", "path", db.Path())
		a.closers = append(a.closers, db.Close)
		st = stores{
			users:     db.UserStore(),
			creds:     db.CredentialStore(),
			clients:   db.ClientStore(),
			templates: db.TemplateStore(),
			scheduler: db.SchedulerStore(),
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", settings.Storage.Driver)
	}

	identity := google.NewIdentityProvider(google.OAuthConfig{
		ClientID:     settings.Google.ClientID,
		ClientSecret: settings.Google.ClientSecret,
		RedirectURL:  settings.Google.RedirectURL,
		Scopes:       settings.Google.Scopes,
	})

	schedCfg := settings.Scheduler.SchedulerConfig()
	refresher := services.NewTokenRefresher(st.creds, identity, services.WithRefreshLead(schedCfg.RefreshLead))

	gmailLimiter := google.NewRateLimiterWithConfig(google.RateLimitConfig{
		RequestsPerSecond: settings.Mail.GmailRPS,
		BurstSize:         settings.Mail.GmailBurst,
	})
	calendarLimiter := google.NewRateLimiter(google.ServiceCalendar)

	a.tokens = refresher
	a.auth = services.NewAuthService(identity, st.users, st.creds)
	a.clients = services.NewClientService(st.clients)
	a.templates = services.NewTemplateService(st.templates)
	a.mail = services.NewMailMergeService(
		st.creds, refresher, st.clients, st.templates,
		gmail.NewComposer(), gmail.NewSender(gmailLimiter),
		settings.Mail,
	)
	a.calendar = services.NewCalendarService(refresher, calendar.NewReader(calendarLimiter, settings.Mail.Location()))
	a.scheduler = services.NewScheduler(schedCfg, st.scheduler, refresher)

	return a, nil
}
