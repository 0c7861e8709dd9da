package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clientdesk/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/logger"
)

var serveAccessLog bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the token refresh scheduler",
	Long: `Starts the HTTP API on the configured port together with the
background job that refreshes Google tokens before they expire.

The settings file is watched while serving; edits to the [log] section
take effect without a restart. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveAccessLog, "access-log", false, "log every HTTP request")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	store, settings, err := loadSettings()
	if err != nil {
		return err
	}
	if err := settings.ValidateForServe(); err != nil {
		return fmt.Errorf("invalid settings in %s: %w", store.Path(), err)
	}

	a, err := newApp(settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing stores", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := httpapi.New(httpapi.Config{
		Server:     settings.Server,
		Session:    settings.Session,
		HTTP:       settings.HTTP,
		Version:    version,
		AccessLogs: serveAccessLog,
	}, httpapi.Services{
		Auth:      a.auth,
		Clients:   a.clients,
		Templates: a.templates,
		Mail:      a.mail,
		Calendar:  a.calendar,
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := a.scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler stopped", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		err := store.Watch(ctx, func(s domain.Settings) {
			applyLogSettings(s.Log)
			logger.Info("settings reloaded", "path", store.Path(), "log_level", s.Log.Level)
		})
		if err != nil {
			logger.Warn("settings watch disabled", "path", store.Path(), "error", err)
		}
	}()

	cmd.Printf("clientdesk %s serving on :%d\n", version, settings.Server.Port)
	err = server.Run(ctx)
	stop()
	wg.Wait()
	return err
}
