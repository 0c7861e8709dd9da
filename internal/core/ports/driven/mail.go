package driven

import (
	"context"
	"time"
)

// MessageComposer builds the wire form of one outgoing message.
type MessageComposer interface {
	// Compose returns an RFC 5322 message with an HTML body, encoded as
	// base64url without padding.
	Compose(to, subject, htmlBody string, date time.Time) (string, error)
}

// MailSender delivers one pre-built message through the owner's mailbox.
type MailSender interface {
	// Send delivers raw, a base64url (unpadded) RFC 5322 message.
	Send(ctx context.Context, accessToken, raw string) error
}
