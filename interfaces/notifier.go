package interfaces

import (
	"context"

	"github.com/customeros/mailvault/internal/models"
)

// NotificationService delivers the per-run report to the configured
// recipient.
type NotificationService interface {
	SendRunReport(ctx context.Context, summary models.RunSummary) error
}
