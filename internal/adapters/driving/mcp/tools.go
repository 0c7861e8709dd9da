package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// errUnavailable is returned by tools whose port was not wired.
var errUnavailable = errors.New("tool unavailable in this configuration")

// ListClientsInput is the input schema for the list_clients tool.
type ListClientsInput struct {
	Query string `json:"query,omitempty" jsonschema:"case-insensitive filter on client name or email"`
}

// ClientOutput is one client as returned to the assistant.
type ClientOutput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// ListClientsOutput is the output schema for the list_clients tool.
type ListClientsOutput struct {
	Clients []ClientOutput `json:"clients"`
	Count   int            `json:"count"`
}

// ListTemplatesInput is the input schema for the list_templates tool.
type ListTemplatesInput struct{}

// TemplateOutput is one email template.
type TemplateOutput struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ListTemplatesOutput is the output schema for the list_templates tool.
type ListTemplatesOutput struct {
	Templates []TemplateOutput `json:"templates"`
	Count     int              `json:"count"`
}

// SendBulkEmailInput is the input schema for the send_bulk_email tool.
type SendBulkEmailInput struct {
	ClientIDs  []string `json:"client_ids" jsonschema:"ids of the clients to email"`
	TemplateID string   `json:"template_id,omitempty" jsonschema:"stored template to send; replaces subject and body"`
	Subject    string   `json:"subject,omitempty" jsonschema:"subject line, may use {{client_name}}, {{client_email}} and {{date}}"`
	Body       string   `json:"body,omitempty" jsonschema:"HTML body, may use the same placeholders as subject"`
}

// SendBulkEmailOutput is the output schema for the send_bulk_email tool.
type SendBulkEmailOutput struct {
	Results []domain.SendResult `json:"results"`
	Sent    int                 `json:"sent"`
	Failed  int                 `json:"failed"`
}

// ListEventsInput is the input schema for the list_calendar_events tool.
type ListEventsInput struct {
	Period  string `json:"period,omitempty" jsonschema:"today, week or month; ignored when time_min and time_max are set"`
	TimeMin string `json:"time_min,omitempty" jsonschema:"RFC 3339 start of the window"`
	TimeMax string `json:"time_max,omitempty" jsonschema:"RFC 3339 end of the window"`
}

// ListEventsOutput is the output schema for the list_calendar_events tool.
type ListEventsOutput struct {
	Events []domain.CalendarEvent `json:"events"`
	Count  int                    `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_clients",
		Description: "List the owner's clients, newest first",
	}, s.handleListClients)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_templates",
		Description: "List the owner's email templates",
	}, s.handleListTemplates)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "send_bulk_email",
		Description: "Send a personalised email to each listed client through the owner's Gmail account",
	}, s.handleSendBulkEmail)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_calendar_events",
		Description: "List events from the owner's primary Google calendar",
	}, s.handleListEvents)
}

func (s *Server) handleListClients(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListClientsInput,
) (*mcp.CallToolResult, ListClientsOutput, error) {
	clients, err := s.ports.Clients.List(ctx, s.ownerID)
	if err != nil {
		return nil, ListClientsOutput{}, err
	}

	query := strings.ToLower(strings.TrimSpace(input.Query))
	output := ListClientsOutput{Clients: make([]ClientOutput, 0, len(clients))}
	for i := range clients {
		c := &clients[i]
		if query != "" &&
			!strings.Contains(strings.ToLower(c.Name), query) &&
			!strings.Contains(strings.ToLower(c.Email), query) {
			continue
		}
		output.Clients = append(output.Clients, ClientOutput{
			ID:    c.ID,
			Name:  c.Name,
			Email: c.Email,
			Phone: deref(c.Phone),
			Notes: deref(c.Notes),
		})
	}
	output.Count = len(output.Clients)

	return nil, output, nil
}

func (s *Server) handleListTemplates(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListTemplatesInput,
) (*mcp.CallToolResult, ListTemplatesOutput, error) {
	if s.ports.Templates == nil {
		return nil, ListTemplatesOutput{}, errUnavailable
	}

	templates, err := s.ports.Templates.List(ctx, s.ownerID)
	if err != nil {
		return nil, ListTemplatesOutput{}, err
	}

	output := ListTemplatesOutput{
		Templates: make([]TemplateOutput, len(templates)),
		Count:     len(templates),
	}
	for i := range templates {
		output.Templates[i] = TemplateOutput{
			ID:      templates[i].ID,
			Name:    templates[i].Name,
			Subject: templates[i].Subject,
			Body:    templates[i].Body,
		}
	}

	return nil, output, nil
}

func (s *Server) handleSendBulkEmail(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SendBulkEmailInput,
) (*mcp.CallToolResult, SendBulkEmailOutput, error) {
	if s.ports.Mail == nil {
		return nil, SendBulkEmailOutput{}, errUnavailable
	}

	var (
		results []domain.SendResult
		err     error
	)
	if input.TemplateID != "" {
		results, err = s.ports.Mail.SendTemplate(ctx, s.ownerID, input.TemplateID, input.ClientIDs)
	} else {
		results, err = s.ports.Mail.SendBulk(ctx, s.ownerID, domain.SendRequest{
			RecipientIDs: input.ClientIDs,
			Subject:      input.Subject,
			Body:         input.Body,
		})
	}
	if err != nil {
		return nil, SendBulkEmailOutput{}, err
	}

	output := SendBulkEmailOutput{Results: results}
	for _, r := range results {
		if r.Success {
			output.Sent++
		} else {
			output.Failed++
		}
	}

	return nil, output, nil
}

func (s *Server) handleListEvents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListEventsInput,
) (*mcp.CallToolResult, ListEventsOutput, error) {
	if s.ports.Calendar == nil {
		return nil, ListEventsOutput{}, errUnavailable
	}

	timeMin, timeMax, err := s.window(input)
	if err != nil {
		return nil, ListEventsOutput{}, err
	}

	events, err := s.ports.Calendar.ListEvents(ctx, s.ownerID, timeMin, timeMax)
	if err != nil {
		return nil, ListEventsOutput{}, err
	}
	if events == nil {
		events = []domain.CalendarEvent{}
	}

	return nil, ListEventsOutput{Events: events, Count: len(events)}, nil
}

func (s *Server) window(input ListEventsInput) (time.Time, time.Time, error) {
	if input.TimeMin == "" || input.TimeMax == "" {
		from, to := domain.WindowForPeriod(domain.Period(input.Period), s.now())
		return from, to, nil
	}

	timeMin, err := time.Parse(time.RFC3339, input.TimeMin)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: time_min: %w", domain.ErrInvalidInput, err)
	}
	timeMax, err := time.Parse(time.RFC3339, input.TimeMax)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: time_max: %w", domain.ErrInvalidInput, err)
	}
	return timeMin, timeMax, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
