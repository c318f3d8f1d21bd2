package interfaces

import (
	"context"

	"github.com/customeros/mailvault/internal/models"
)

// BatchProcessor executes a single batch run without retrying.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context) (models.RunSummary, error)
}

// ProcessorRunner executes one retry-wrapped processing run.
type ProcessorRunner interface {
	Run(ctx context.Context) (models.RunSummary, error)
}
