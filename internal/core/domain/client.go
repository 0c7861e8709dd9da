package domain

import (
	"net/mail"
	"strings"
	"time"
)

// Client is a contact belonging to exactly one owner.
type Client struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Recipient is the projection of a Client used for mail-merge.
type Recipient struct {
	ID    string
	Name  string
	Email string
}

// Recipient returns the mail-merge projection of c.
func (c *Client) Recipient() Recipient {
	return Recipient{ID: c.ID, Name: c.Name, Email: c.Email}
}

// ClientInput is the caller-supplied content of a new client.
type ClientInput struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

// Validate checks the required fields of a new client.
func (in ClientInput) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(in.Name) == "" {
		v.Add("name", "name is required")
	}
	if !IsEmail(in.Email) {
		v.Add("email", "invalid email address")
	}
	return v.OrNil()
}

// ClientPatch is a partial update of a client. Nil fields are left untouched.
type ClientPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

// Validate checks the fields that are present.
func (p ClientPatch) Validate() error {
	v := NewValidationError()
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		v.Add("name", "name is required")
	}
	if p.Email != nil && !IsEmail(*p.Email) {
		v.Add("email", "invalid email address")
	}
	return v.OrNil()
}

// Apply copies the set fields of p onto c.
func (p ClientPatch) Apply(c *Client) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = p.Phone
	}
	if p.Notes != nil {
		c.Notes = p.Notes
	}
}

// IsEmail reports whether s is a single bare address such as a@b.com.
func IsEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}
