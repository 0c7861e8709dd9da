package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driving"
	"github.com/custodia-labs/clientdesk/internal/logger"
)

// Ensure MailMergeService implements the interface.
var _ driving.MailMergeService = (*MailMergeService)(nil)

// MailMergeService sends one personalised message per client through the
// owner's Gmail account.
type MailMergeService struct {
	creds     driven.CredentialStore
	tokens    driving.TokenService
	clients   driven.ClientStore
	templates driven.TemplateStore
	composer  driven.MessageComposer
	sender    driven.MailSender

	dateLayout string
	loc        *time.Location
	now        func() time.Time
}

// NewMailMergeService creates a MailMergeService.
// cfg supplies the {{date}} layout and timezone.
func NewMailMergeService(
	creds driven.CredentialStore,
	tokens driving.TokenService,
	clients driven.ClientStore,
	templates driven.TemplateStore,
	composer driven.MessageComposer,
	sender driven.MailSender,
	cfg domain.MailSettings,
) *MailMergeService {
	layout := cfg.DateLayout
	if layout == "" {
		layout = domain.DefaultDateLayout
	}
	return &MailMergeService{
		creds:      creds,
		tokens:     tokens,
		clients:    clients,
		templates:  templates,
		composer:   composer,
		sender:     sender,
		dateLayout: layout,
		loc:        cfg.Location(),
		now:        time.Now,
	}
}

// SendBulk merges req for every requested client and sends the results one
// at a time. Nothing is sent unless every id resolves to one of the owner's
// clients. Delivery failures are reported per recipient.
func (s *MailMergeService) SendBulk(
	ctx context.Context,
	ownerID string,
	req domain.SendRequest,
) ([]domain.SendResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ids := req.UniqueRecipientIDs()

	cred, err := s.creds.Get(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading credential: %w", err)
	}
	if cred == nil {
		return nil, domain.ErrNoCredential
	}

	recipients, err := s.clients.FindByIDs(ctx, ids, ownerID)
	if err != nil {
		return nil, fmt.Errorf("resolving recipients: %w", err)
	}
	if len(recipients) != len(ids) {
		return nil, domain.ErrUnauthorizedRecipient
	}

	cred, err = s.tokens.Valid(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	date := s.now().In(s.loc)
	results := make([]domain.SendResult, 0, len(recipients))
	failed := 0
	for _, rcpt := range recipients {
		fields := domain.NewMergeFields(rcpt, date, s.dateLayout)
		err := s.sendOne(ctx, cred.AccessToken, rcpt.Email, fields.Render(req.Subject), fields.Render(req.Body), date)
		if err != nil {
			failed++
			logger.Warn("mail merge delivery failed", "owner_id", ownerID, "client_id", rcpt.ID, "error", err)
			results = append(results, domain.SendResult{Success: false, Recipient: rcpt.Email, Error: err.Error()})
			continue
		}
		results = append(results, domain.SendResult{Success: true, Recipient: rcpt.Email})
	}

	logger.Info("mail merge finished", "owner_id", ownerID, "sent", len(results)-failed, "failed", failed)
	return results, nil
}

// SendTemplate sends a stored template to the requested clients.
func (s *MailMergeService) SendTemplate(
	ctx context.Context,
	ownerID, templateID string,
	clientIDs []string,
) ([]domain.SendResult, error) {
	tmpl, err := s.templates.Get(ctx, templateID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.SendBulk(ctx, ownerID, domain.SendRequest{
		RecipientIDs: clientIDs,
		Subject:      tmpl.Subject,
		Body:         tmpl.Body,
	})
}

func (s *MailMergeService) sendOne(ctx context.Context, accessToken, to, subject, body string, date time.Time) error {
	raw, err := s.composer.Compose(to, subject, body, date)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, accessToken, raw)
}
