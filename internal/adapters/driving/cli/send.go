package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/logger"
)

var (
	sendOwner    string
	sendClients  []string
	sendSubject  string
	sendBody     string
	sendTemplate string
	sendJSON     bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a personalised email to clients",
	Long: `Sends one email per client through the owner's Gmail account.

The subject and body may contain {{client_name}}, {{client_email}} and
{{date}}, which are replaced for each recipient. Use --template to send
a stored template instead of --subject and --body.

Every client must belong to the owner; otherwise nothing is sent.`,
	Example: `  clientdesk send --owner 3f1c... --clients c1,c2 --subject "Hi {{client_name}}" --body "<p>Hello</p>"
  clientdesk send --owner 3f1c... --clients c1 --template 9a2e...`,
	Args: cobra.NoArgs,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendOwner, "owner", "", "owner user ID")
	sendCmd.Flags().StringSliceVar(&sendClients, "clients", nil, "comma-separated client IDs")
	sendCmd.Flags().StringVar(&sendSubject, "subject", "", "subject line")
	sendCmd.Flags().StringVar(&sendBody, "body", "", "HTML body")
	sendCmd.Flags().StringVar(&sendTemplate, "template", "", "stored template ID")
	sendCmd.Flags().BoolVar(&sendJSON, "json", false, "output results as JSON")
	sendCmd.MarkFlagsMutuallyExclusive("body", "template")
	sendCmd.MarkFlagsMutuallyExclusive("subject", "template")
	sendCmd.MarkFlagsOneRequired("body", "template")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, _ []string) error {
	if err := requireOwner(sendOwner); err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing stores", "error", err)
		}
	}()

	var results []domain.SendResult
	if sendTemplate != "" {
		results, err = a.mail.SendTemplate(cmd.Context(), sendOwner, sendTemplate, sendClients)
	} else {
		results, err = a.mail.SendBulk(cmd.Context(), sendOwner, domain.SendRequest{
			RecipientIDs: sendClients,
			Subject:      sendSubject,
			Body:         sendBody,
		})
	}
	if err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	if sendJSON {
		data, err := json.MarshalIndent(map[string]any{"results": results}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	outputSendResults(cmd, results)
	return nil
}

func outputSendResults(cmd *cobra.Command, results []domain.SendResult) {
	p := newPainter(cmd.OutOrStdout())
	sent := 0
	for _, r := range results {
		if r.Success {
			sent++
			cmd.Printf("  %s %s\n", p.ok("sent"), r.Recipient)
			continue
		}
		cmd.Printf("  %s %s %s\n", p.fail("failed"), r.Recipient, p.dim(r.Error))
	}
	cmd.Printf("Sent %d, failed %d\n", sent, len(results)-sent)
}
