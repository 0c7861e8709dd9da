package httpapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driving"
	"github.com/custodia-labs/clientdesk/internal/logger"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Config holds the HTTP server settings.
type Config struct {
	Server     domain.ServerSettings
	Session    domain.SessionSettings
	HTTP       domain.HTTPSettings
	Version    string
	AccessLogs bool
}

// Services are the driving ports the handlers call.
type Services struct {
	Auth      driving.AuthService
	Clients   driving.ClientService
	Templates driving.TemplateService
	Mail      driving.MailMergeService
	Calendar  driving.CalendarService
}

// Server is the clientdesk HTTP API.
type Server struct {
	app      *fiber.App
	cfg      Config
	svc      Services
	sessions *Sessions
	limiter  *ipLimiter
	now      func() time.Time
}

// New builds the fiber app and registers every route.
func New(cfg Config, svc Services) *Server {
	s := &Server{
		cfg:      cfg,
		svc:      svc,
		sessions: NewSessions(cfg.Session),
		limiter:  newIPLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateWindow),
		now:      time.Now,
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "clientdesk",
		ErrorHandler: errorHandler,
		ReadTimeout:  cfg.HTTP.RequestTimeout,
		WriteTimeout: cfg.HTTP.RequestTimeout,
	})

	s.app.Use(recover.New())
	if cfg.AccessLogs {
		s.app.Use(fiberlogger.New())
	}
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     s.allowedOrigins(),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: true,
	}))
	s.app.Use(s.limiter.middleware())

	s.routes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Get("/api/v1/health", s.health)

	s.app.Get("/auth/google/login", s.login)
	s.app.Get("/auth/callback", s.callback)
	s.app.Post("/auth/logout", s.logout)

	api := s.app.Group("/api/v1", requireSession(s.sessions, s.svc.Auth))
	api.Get("/me", s.me)

	api.Get("/clients", s.listClients)
	api.Post("/clients", s.createClient)
	api.Get("/clients/:id", s.getClient)
	api.Patch("/clients/:id", s.updateClient)
	api.Delete("/clients/:id", s.deleteClient)

	api.Get("/templates", s.listTemplates)
	api.Post("/templates", s.createTemplate)
	api.Get("/templates/:id", s.getTemplate)
	api.Patch("/templates/:id", s.updateTemplate)
	api.Delete("/templates/:id", s.deleteTemplate)
	api.Post("/templates/:id/send", s.sendTemplate)

	api.Post("/emails/send", s.sendEmails)
	api.Get("/calendar/events", s.calendarEvents)
}

func (s *Server) allowedOrigins() []string {
	if len(s.cfg.Server.CORSOrigins) > 0 {
		return s.cfg.Server.CORSOrigins
	}
	if s.cfg.Server.FrontendURL != "" {
		return []string{s.cfg.Server.FrontendURL}
	}
	return []string{"http://localhost:3000"}
}

// Run serves on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.limiter.run(ctx)

	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()
	logger.Info("http server listening", "addr", addr, "base_url", s.cfg.Server.BaseURL)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	logger.Info("http server stopped")
	return nil
}
