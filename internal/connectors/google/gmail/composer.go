package gmail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
)

// Ensure Composer implements the interface.
var _ driven.MessageComposer = (*Composer)(nil)

// Composer builds single-part HTML messages in the form Gmail's
// users.messages.send expects.
type Composer struct{}

// NewComposer creates a Composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Compose returns the message as base64url without padding.
func (c *Composer) Compose(to, subject, htmlBody string, date time.Time) (string, error) {
	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	h.SetSubject(subject)
	h.Set("MIME-Version", "1.0")
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return "", fmt.Errorf("create message writer: %w", err)
	}
	if _, err := io.WriteString(w, htmlBody); err != nil {
		return "", fmt.Errorf("write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close message writer: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}
