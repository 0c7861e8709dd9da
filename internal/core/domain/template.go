package domain

import (
	"strings"
	"time"
)

// EmailTemplate is a reusable subject and body owned by one user.
type EmailTemplate struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"user_id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateInput is the caller-supplied content of a new template.
type TemplateInput struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Validate checks that every field is present.
func (in TemplateInput) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(in.Name) == "" {
		v.Add("name", "name is required")
	}
	if strings.TrimSpace(in.Subject) == "" {
		v.Add("subject", "subject is required")
	}
	if strings.TrimSpace(in.Body) == "" {
		v.Add("body", "body is required")
	}
	return v.OrNil()
}

// TemplatePatch is a partial update of a template.
type TemplatePatch struct {
	Name    *string `json:"name"`
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
}

// Validate rejects present-but-empty fields.
func (p TemplatePatch) Validate() error {
	v := NewValidationError()
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		v.Add("name", "name is required")
	}
	if p.Subject != nil && strings.TrimSpace(*p.Subject) == "" {
		v.Add("subject", "subject is required")
	}
	if p.Body != nil && strings.TrimSpace(*p.Body) == "" {
		v.Add("body", "body is required")
	}
	return v.OrNil()
}

// Apply copies the set fields of p onto t.
func (p TemplatePatch) Apply(t *EmailTemplate) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Subject != nil {
		t.Subject = *p.Subject
	}
	if p.Body != nil {
		t.Body = *p.Body
	}
}
