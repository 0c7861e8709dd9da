package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

const uriScheme = "clientdesk://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "clients",
		Name:        "clients",
		Description: "All of the owner's clients",
		MIMEType:    "application/json",
	}, s.handleClientsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "clients/{clientId}",
		Name:        "client",
		Description: "A single client with phone and notes",
		MIMEType:    "application/json",
	}, s.handleClientResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "templates/{templateId}",
		Name:        "template",
		Description: "A stored email template",
		MIMEType:    "application/json",
	}, s.handleTemplateResource)
}

func (s *Server) handleClientsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	clients, err := s.ports.Clients.List(ctx, s.ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	if clients == nil {
		clients = []domain.Client{}
	}
	return jsonResource(req.Params.URI, clients)
}

func (s *Server) handleClientResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractID(req.Params.URI, "clients/")
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	client, err := s.ports.Clients.Get(ctx, s.ownerID, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting client: %w", err)
	}
	return jsonResource(req.Params.URI, client)
}

func (s *Server) handleTemplateResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Templates == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractID(req.Params.URI, "templates/")
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	tmpl, err := s.ports.Templates.Get(ctx, s.ownerID, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting template: %w", err)
	}
	return jsonResource(req.Params.URI, tmpl)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractID returns the id from a URI like clientdesk://clients/{id}.
func extractID(uri, collection string) string {
	prefix := uriScheme + collection
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}
