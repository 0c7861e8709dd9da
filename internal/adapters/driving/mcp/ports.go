package mcp

import (
	"github.com/custodia-labs/clientdesk/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Clients is required.
	Clients driving.ClientService

	// Templates, Mail and Calendar are optional. Tools backed by a missing
	// port report it as unavailable.
	Templates driving.TemplateService
	Mail      driving.MailMergeService
	Calendar  driving.CalendarService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Clients == nil {
		return ErrMissingClientService
	}
	return nil
}
