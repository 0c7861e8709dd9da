// Package cli provides the clientdesk command line interface.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clientdesk/internal/adapters/driven/config/file"
	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "clientdesk",
	Short: "Client desk for small agencies",
	Long: `clientdesk keeps a list of clients and email templates and talks to
Google on each owner's behalf: personalised bulk mail through Gmail and
a read-only view of the primary calendar.

Run "clientdesk serve" to start the HTTP API and the token refresh
scheduler.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"settings file (default ~/.clientdesk/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// loadSettings reads .env, the settings file and the environment, and
// applies the log settings.
func loadSettings() (*file.SettingsStore, domain.Settings, error) {
	if err := file.LoadDotEnv(); err != nil {
		logger.Warn("ignoring unreadable .env file", "error", err)
	}

	store, err := file.NewSettingsStore(configPath)
	if err != nil {
		return nil, domain.Settings{}, fmt.Errorf("locating settings: %w", err)
	}
	settings, err := store.Load()
	if err != nil {
		return nil, domain.Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	applyLogSettings(settings.Log)
	return store, settings, nil
}

func applyLogSettings(s domain.LogSettings) {
	if err := logger.SetFormat(s.Format); err != nil {
		logger.Warn("invalid log format", "format", s.Format, "error", err)
	}
	if err := logger.SetLevel(s.Level); err != nil {
		logger.Warn("invalid log level", "level", s.Level, "error", err)
	}
}

// openApp loads the settings and wires the services.
func openApp() (*app, error) {
	_, settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return newApp(settings)
}

func requireOwner(owner string) error {
	if owner == "" {
		return errors.New("--owner is required")
	}
	return nil
}
