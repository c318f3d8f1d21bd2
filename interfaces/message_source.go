package interfaces

import (
	"context"

	"github.com/customeros/mailvault/internal/models"
)

// MessageSource hands the pipeline one batch of unread messages. Messages
// without attachments are returned too so the batch accounting sees them.
type MessageSource interface {
	FetchMessages(ctx context.Context, limit int) ([]models.Message, error)
}
