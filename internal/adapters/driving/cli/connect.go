package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clientdesk/internal/adapters/driving/oauth"
	"github.com/custodia-labs/clientdesk/internal/logger"
)

var (
	connectPort    int
	connectTimeout time.Duration
)

// openBrowser is replaced in tests.
var openBrowser = oauth.OpenBrowser

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a Google account from the terminal",
	Long: `Sign in with Google without running the HTTP server.

A temporary callback server is started on 127.0.0.1 and the consent page
is opened in the browser. Once access is granted the account is recorded
and its owner ID is printed for use with --owner.

The callback URI (http://localhost:<port>/callback) must be registered on
the Google OAuth client. Use --port to pin it.`,
	Args: cobra.NoArgs,
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().IntVar(&connectPort, "port", 0, "callback port (0 = pick a free port)")
	connectCmd.Flags().DurationVar(&connectTimeout, "timeout", 5*time.Minute, "how long to wait for consent")
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, _ []string) error {
	_, settings, err := loadSettings()
	if err != nil {
		return err
	}
	if settings.Google.ClientID == "" || settings.Google.ClientSecret == "" {
		return errors.New("google client_id and client_secret are required (run \"clientdesk config init\")")
	}

	cb := oauth.NewCallbackServer(connectPort)
	if err := cb.Start(); err != nil {
		return fmt.Errorf("starting callback server: %w", err)
	}
	defer func() {
		if err := cb.Stop(); err != nil {
			logger.Debug("stopping callback server", "error", err)
		}
	}()
	settings.Google.RedirectURL = cb.RedirectURI()

	a, err := newApp(settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing stores", "error", err)
		}
	}()

	challenge, err := a.auth.BeginLogin()
	if err != nil {
		return fmt.Errorf("starting login: %w", err)
	}

	p := newPainter(cmd.OutOrStdout())
	cmd.Printf("Open this URL to grant access:\n  %s\n", challenge.URL)
	if err := openBrowser(challenge.URL); err != nil {
		logger.Debug("could not open browser", "error", err)
	}
	cmd.Println(p.dim("Waiting for Google..."))

	code, err := cb.WaitForCode(cmd.Context(), challenge.State, connectTimeout)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	result, err := a.auth.CompleteLogin(cmd.Context(), code, challenge.Verifier)
	if err != nil {
		return fmt.Errorf("completing login: %w", err)
	}

	cmd.Printf("%s %s\n", p.ok("Connected"), result.User.Email)
	cmd.Printf("Owner ID: %s\n", result.User.ID)
	if !result.CredentialStored {
		cmd.Println(p.fail("Tokens could not be saved; mail and calendar will need a reconnect."))
	}
	return nil
}
