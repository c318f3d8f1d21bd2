package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/customeros/mailvault/interfaces"
	"github.com/customeros/mailvault/internal/models"
	"github.com/customeros/mailvault/internal/tracing"
)

type attachmentRecordRepository struct {
	db      *gorm.DB
	storage interfaces.StorageService
}

func NewAttachmentRecordRepository(db *gorm.DB, storageService interfaces.StorageService) interfaces.AttachmentRecordRepository {
	return &attachmentRecordRepository{
		db:      db,
		storage: storageService,
	}
}

// Create adds a new attachment record to the database
func (r *attachmentRecordRepository) Create(ctx context.Context, record *models.AttachmentRecord) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "attachmentRecordRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID retrieves an attachment record by its ID
func (r *attachmentRecordRepository) GetByID(ctx context.Context, id string) (*models.AttachmentRecord, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "attachmentRecordRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	var record models.AttachmentRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &record, nil
}

// List retrieves attachment records, newest first
func (r *attachmentRecordRepository) List(ctx context.Context, limit, offset int) ([]*models.AttachmentRecord, int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "attachmentRecordRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var records []*models.AttachmentRecord
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.AttachmentRecord{}).Count(&total).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, 0, err
	}
	return records, total, nil
}

// GetData retrieves the attachment payload from storage
func (r *attachmentRecordRepository) GetData(ctx context.Context, id string) ([]byte, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "attachmentRecordRepository.GetData")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	record, err := r.GetByID(ctx, id)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if record == nil {
		return nil, ErrAttachmentRecordNotFound
	}

	data, err := r.storage.Download(ctx, record.StorageKey)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to download attachment: %w", err)
	}

	return data, nil
}

// Delete removes an attachment record from both database and storage
func (r *attachmentRecordRepository) Delete(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "attachmentRecordRepository.Delete")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	record, err := r.GetByID(ctx, id)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if record == nil {
		return nil // Already deleted
	}

	// Delete from storage
	if record.StorageKey != "" {
		if err := r.storage.Delete(ctx, record.StorageKey); err != nil {
			// Log the error but continue with DB deletion
			tracing.TraceErr(span, err)
		}
	}

	// Delete from database
	return r.db.WithContext(ctx).Delete(&models.AttachmentRecord{}, "id = ?", id).Error
}
