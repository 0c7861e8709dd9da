package cli

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and write the settings file.

Values from the environment (CLIENTDESK_*, GOOGLE_CLIENT_ID, ...) and
from a .env file in the working directory override the file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup",
	Long:  `Prompt for the Google OAuth app and write a settings file with a fresh session secret.`,
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing settings file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	store, s, err := loadSettings()
	if err != nil {
		return err
	}

	p := newPainter(cmd.OutOrStdout())
	cmd.Println(p.header("Settings") + " " + p.dim(store.Path()))
	cmd.Println()

	cmd.Println("[server]")
	cmd.Printf("  port: %d\n", s.Server.Port)
	cmd.Printf("  base_url: %s\n", s.Server.BaseURL)
	cmd.Printf("  frontend_url: %s\n", s.Server.FrontendURL)
	if len(s.Server.CORSOrigins) > 0 {
		cmd.Printf("  cors_origins: %s\n", strings.Join(s.Server.CORSOrigins, ", "))
	}
	cmd.Println()

	cmd.Println("[google]")
	cmd.Printf("  client_id: %s\n", orNotSet(s.Google.ClientID))
	cmd.Printf("  client_secret: %s\n", maskSecret(s.Google.ClientSecret))
	cmd.Printf("  redirect_url: %s\n", s.Google.RedirectURL)
	cmd.Println()

	cmd.Println("[session]")
	cmd.Printf("  secret: %s\n", maskSecret(s.Session.Secret))
	cmd.Printf("  ttl: %s\n", s.Session.TTL)
	cmd.Printf("  secure: %t\n", s.Session.Secure)
	cmd.Println()

	cmd.Println("[storage]")
	cmd.Printf("  driver: %s\n", s.Storage.Driver)
	cmd.Printf("  data_dir: %s\n", s.Storage.DataDir)
	cmd.Println()

	cmd.Println("[mail]")
	cmd.Printf("  timezone: %s\n", s.Mail.Timezone)
	cmd.Printf("  date_layout: %s\n", s.Mail.DateLayout)
	cmd.Println()

	cmd.Println("[scheduler]")
	cmd.Printf("  enabled: %t\n", s.Scheduler.Enabled)
	cmd.Printf("  refresh_interval: %s\n", s.Scheduler.RefreshInterval)
	cmd.Printf("  refresh_lead: %s\n", s.Scheduler.RefreshLead)
	cmd.Println()

	cmd.Println("[log]")
	cmd.Printf("  level: %s\n", s.Log.Level)
	cmd.Printf("  format: %s\n", s.Log.Format)

	if err := s.ValidateForServe(); err != nil {
		cmd.Println()
		cmd.Println(p.fail("not ready to serve:"))
		for _, line := range strings.Split(err.Error(), "\n") {
			cmd.Printf("  - %s\n", line)
		}
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	store, settings, err := loadSettings()
	if err != nil {
		return err
	}
	if _, err := os.Stat(store.Path()); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", store.Path())
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Create an OAuth client in the Google Cloud console with the Gmail")
	cmd.Println("send and Calendar read-only scopes, then enter its details.")
	cmd.Println()

	settings.Google.ClientID = prompt(cmd, reader, "Google client ID", settings.Google.ClientID)
	cmd.Print("Google client secret: ")
	if secret := readPassword(cmd.InOrStdin(), reader); secret != "" {
		settings.Google.ClientSecret = secret
	}
	cmd.Println()
	settings.Google.RedirectURL = prompt(cmd, reader, "Redirect URL", settings.Google.RedirectURL)
	settings.Server.FrontendURL = prompt(cmd, reader, "Frontend URL", settings.Server.FrontendURL)

	if len(settings.Session.Secret) < 32 {
		secret, err := newSessionSecret()
		if err != nil {
			return fmt.Errorf("generating session secret: %w", err)
		}
		settings.Session.Secret = secret
	}

	if err := store.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	cmd.Printf("Settings written to %s\n", store.Path())
	return nil
}

// prompt reads one line, keeping current when the answer is blank.
func prompt(cmd *cobra.Command, reader *bufio.Reader, label, current string) string {
	if current != "" {
		cmd.Printf("%s [%s]: ", label, current)
	} else {
		cmd.Printf("%s: ", label)
	}
	if answer := readLine(reader); answer != "" {
		return answer
	}
	return current
}

func readLine(reader *bufio.Reader) string {
	input, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(input)
}

// readPassword reads without echo when in is a terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func newSessionSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func maskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

