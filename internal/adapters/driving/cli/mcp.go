package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clientdesk/internal/adapters/driving/mcp"
	"github.com/custodia-labs/clientdesk/internal/logger"
)

var (
	mcpOwner string
	mcpPort  int
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server that lets an AI assistant list
clients and templates, send mail merges and read the calendar on behalf
of one owner.

By default the server communicates over stdio. Use --port to serve the
streamable HTTP transport instead.

Examples:
  # Stdio mode
  clientdesk mcp serve --owner 3f1c...

  # HTTP mode
  clientdesk mcp serve --owner 3f1c... --port 8090`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpOwner, "owner", "", "owner user ID the assistant acts for")
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if err := requireOwner(mcpOwner); err != nil {
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

	server, err := mcp.NewServer(&mcp.Ports{
		Clients:   a.clients,
		Templates: a.templates,
		Mail:      a.mail,
		Calendar:  a.calendar,
	}, mcpOwner)
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
