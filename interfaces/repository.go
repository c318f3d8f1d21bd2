package interfaces

import (
	"context"

	"github.com/customeros/mailvault/internal/models"
)

type AttachmentRecordRepository interface {
	Create(ctx context.Context, record *models.AttachmentRecord) error
	GetByID(ctx context.Context, id string) (*models.AttachmentRecord, error)
	List(ctx context.Context, limit, offset int) ([]*models.AttachmentRecord, int64, error)
	GetData(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

type ProcessingRunRepository interface {
	Create(ctx context.Context, run *models.ProcessingRun) error
	GetByID(ctx context.Context, id string) (*models.ProcessingRun, error)
	GetLatest(ctx context.Context) (*models.ProcessingRun, error)
	List(ctx context.Context, limit, offset int) ([]*models.ProcessingRun, int64, error)
}
