// Package gmail sends mail through the Gmail API on behalf of an owner.
package gmail

import (
	"context"
	"fmt"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/custodia-labs/clientdesk/internal/connectors/google"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
)

// meUserID addresses the mailbox of the token's subject.
const meUserID = "me"

// Ensure Sender implements the interface.
var _ driven.MailSender = (*Sender)(nil)

// Sender implements driven.MailSender with users.messages.send.
type Sender struct {
	limiter *google.RateLimiter
	opts    []option.ClientOption
}

// NewSender creates a Sender. A nil limiter uses the Gmail defaults.
// opts are passed to the Gmail client, for example to point it at a test server.
func NewSender(limiter *google.RateLimiter, opts ...option.ClientOption) *Sender {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.ServiceGmail)
	}
	return &Sender{limiter: limiter, opts: opts}
}

// Send delivers one raw message.
func (s *Sender) Send(ctx context.Context, accessToken, raw string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("gmail rate limiter: %w", err)
	}

	svc, err := google.NewGmailService(ctx, accessToken, s.opts...)
	if err != nil {
		return fmt.Errorf("create gmail service: %w", err)
	}

	_, err = svc.Users.Messages.Send(meUserID, &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		if google.IsRateLimited(err) {
			s.limiter.RecordRateLimitError(google.RetryAfter(err))
		}
		return google.WrapError(err)
	}
	return nil
}
