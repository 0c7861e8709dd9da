package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/logger"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh [owner-id]",
	Short: "Refresh Google access tokens",
	Long: `Runs the token refresh job once, refreshing every credential that is
about to expire. If an owner ID is provided, that owner's token is
refreshed immediately regardless of its expiry.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing stores", "error", err)
		}
	}()

	p := newPainter(cmd.OutOrStdout())
	ctx := cmd.Context()

	if len(args) > 0 {
		ownerID := args[0]
		cred, err := a.tokens.ForceRefresh(ctx, ownerID, nil)
		if err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
		cmd.Printf("%s token for %s valid until %s\n",
			p.ok("refreshed"), ownerID, cred.Expiry.Local().Format("2006-01-02 15:04:05"))
		return nil
	}

	result, err := a.scheduler.RunNow(ctx, domain.TaskIDOAuthRefresh)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	cmd.Printf("Refreshed %d credential(s) in %s\n",
		result.ItemsProcessed, result.EndedAt.Sub(result.StartedAt).Round(time.Millisecond))
	if !result.Success {
		cmd.Printf("%s %s\n", p.fail("some refreshes failed:"), result.Error)
		return errors.New("refresh completed with errors")
	}
	return nil
}
