package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// mockClientService is a mock implementation of driving.ClientService.
type mockClientService struct {
	clients []domain.Client
	err     error
	owner   string
}

func (m *mockClientService) List(_ context.Context, ownerID string) ([]domain.Client, error) {
	m.owner = ownerID
	return m.clients, m.err
}

func (m *mockClientService) Get(_ context.Context, ownerID, id string) (*domain.Client, error) {
	m.owner = ownerID
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.clients {
		if m.clients[i].ID == id && m.clients[i].OwnerID == ownerID {
			c := m.clients[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockClientService) Create(_ context.Context, _ string, _ domain.ClientInput) (*domain.Client, error) {
	return nil, m.err
}

func (m *mockClientService) Update(_ context.Context, _, _ string, _ domain.ClientPatch) (*domain.Client, error) {
	return nil, m.err
}

func (m *mockClientService) Delete(_ context.Context, _, _ string) error {
	return m.err
}

// mockTemplateService is a mock implementation of driving.TemplateService.
type mockTemplateService struct {
	templates []domain.EmailTemplate
	err       error
}

func (m *mockTemplateService) List(_ context.Context, _ string) ([]domain.EmailTemplate, error) {
	return m.templates, m.err
}

func (m *mockTemplateService) Get(_ context.Context, ownerID, id string) (*domain.EmailTemplate, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.templates {
		if m.templates[i].ID == id && m.templates[i].OwnerID == ownerID {
			t := m.templates[i]
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTemplateService) Create(_ context.Context, _ string, _ domain.TemplateInput) (*domain.EmailTemplate, error) {
	return nil, m.err
}

func (m *mockTemplateService) Update(_ context.Context, _, _ string, _ domain.TemplatePatch) (*domain.EmailTemplate, error) {
	return nil, m.err
}

func (m *mockTemplateService) Delete(_ context.Context, _, _ string) error {
	return m.err
}

// mockMailService is a mock implementation of driving.MailMergeService.
type mockMailService struct {
	results    []domain.SendResult
	err        error
	owner      string
	req        domain.SendRequest
	templateID string
}

func (m *mockMailService) SendBulk(_ context.Context, ownerID string, req domain.SendRequest) ([]domain.SendResult, error) {
	m.owner, m.req = ownerID, req
	return m.results, m.err
}

func (m *mockMailService) SendTemplate(_ context.Context, ownerID, templateID string, clientIDs []string) ([]domain.SendResult, error) {
	m.owner, m.templateID = ownerID, templateID
	m.req = domain.SendRequest{RecipientIDs: clientIDs}
	return m.results, m.err
}

// mockCalendarService is a mock implementation of driving.CalendarService.
type mockCalendarService struct {
	events   []domain.CalendarEvent
	err      error
	from, to time.Time
}

func (m *mockCalendarService) ListEvents(_ context.Context, _ string, from, to time.Time) ([]domain.CalendarEvent, error) {
	m.from, m.to = from, to
	return m.events, m.err
}
