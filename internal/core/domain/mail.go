package domain

import (
	"regexp"
	"strings"
	"time"
)

// Merge placeholders recognised in subjects and bodies.
const (
	PlaceholderClientName = "{{client_name}}"
	PlaceholderEmail      = "{{email}}"
	PlaceholderDate       = "{{date}}"
)

// DefaultDateLayout renders {{date}} as month/day/year without padding.
const DefaultDateLayout = "1/2/2006"

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsUUID reports whether s is a canonical textual UUID.
func IsUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

// SendRequest asks for one subject and body to be merged for each recipient.
type SendRequest struct {
	RecipientIDs []string `json:"clientIds"`
	Subject      string   `json:"subject"`
	Body         string   `json:"body"`
}

// Validate checks the request shape before any store or provider is touched.
func (r SendRequest) Validate() error {
	v := NewValidationError()
	if len(r.RecipientIDs) == 0 {
		v.Add("clientIds", "at least one client is required")
	}
	for _, id := range r.RecipientIDs {
		if !IsUUID(id) {
			v.Add("clientIds", "invalid client id "+id)
			break
		}
	}
	if strings.TrimSpace(r.Subject) == "" {
		v.Add("subject", "subject is required")
	}
	if strings.TrimSpace(r.Body) == "" {
		v.Add("body", "body is required")
	}
	return v.OrNil()
}

// UniqueRecipientIDs returns the ids in first-seen order without duplicates.
func (r SendRequest) UniqueRecipientIDs() []string {
	seen := make(map[string]struct{}, len(r.RecipientIDs))
	ids := make([]string, 0, len(r.RecipientIDs))
	for _, id := range r.RecipientIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// SendResult is the outcome of one delivery attempt.
type SendResult struct {
	Success   bool   `json:"success"`
	Recipient string `json:"recipient"`
	Error     string `json:"error,omitempty"`
}

// MergeFields are the values substituted into a message for one recipient.
type MergeFields struct {
	ClientName string
	Email      string
	Date       string
}

// NewMergeFields builds the fields for r, rendering date with layout.
func NewMergeFields(r Recipient, date time.Time, layout string) MergeFields {
	if layout == "" {
		layout = DefaultDateLayout
	}
	return MergeFields{
		ClientName: r.Name,
		Email:      r.Email,
		Date:       date.Format(layout),
	}
}

// Render replaces every occurrence of the known placeholders in s.
// Unknown {{...}} tokens are left as they are.
func (f MergeFields) Render(s string) string {
	return strings.NewReplacer(
		PlaceholderClientName, f.ClientName,
		PlaceholderEmail, f.Email,
		PlaceholderDate, f.Date,
	).Replace(s)
}
