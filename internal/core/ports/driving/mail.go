package driving

import (
	"context"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// MailMergeService sends personalised copies of one message to many clients.
type MailMergeService interface {
	// SendBulk delivers one message per requested client and reports each
	// outcome in resolution order. A per-recipient failure never aborts the batch.
	SendBulk(ctx context.Context, ownerID string, req domain.SendRequest) ([]domain.SendResult, error)

	// SendTemplate merges a stored template for each requested client.
	SendTemplate(ctx context.Context, ownerID, templateID string, clientIDs []string) ([]domain.SendResult, error)
}
