package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clientdesk/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server is the clientdesk MCP server for one owner.
type Server struct {
	ports   *Ports
	ownerID string
	now     func() time.Time
	server  *mcp.Server
}

// NewServer creates an MCP server acting as ownerID.
func NewServer(ports *Ports, ownerID string) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrMissingOwner
	}

	impl := &mcp.Implementation{
		Name:    "clientdesk",
		Version: Version,
	}

	s := &Server{
		ports:   ports,
		ownerID: ownerID,
		now:     time.Now,
		server:  mcp.NewServer(impl, nil),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("mcp server starting on stdio", "owner_id", s.ownerID)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp http shutdown", "error", err)
		}
	}()

	logger.Info("mcp server listening", "addr", addr, "owner_id", s.ownerID)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
