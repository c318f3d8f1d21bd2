package repository

import (
	"context"
	"errors"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/customeros/mailvault/interfaces"
	"github.com/customeros/mailvault/internal/models"
	"github.com/customeros/mailvault/internal/tracing"
)

type processingRunRepository struct {
	db *gorm.DB
}

func NewProcessingRunRepository(db *gorm.DB) interfaces.ProcessingRunRepository {
	return &processingRunRepository{db: db}
}

// Create adds a new processing run to the database
func (r *processingRunRepository) Create(ctx context.Context, run *models.ProcessingRun) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "processingRunRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	return r.db.WithContext(ctx).Create(run).Error
}

// GetByID retrieves a processing run by its ID
func (r *processingRunRepository) GetByID(ctx context.Context, id string) (*models.ProcessingRun, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "processingRunRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	var run models.ProcessingRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &run, nil
}

// GetLatest retrieves the most recently started processing run
func (r *processingRunRepository) GetLatest(ctx context.Context) (*models.ProcessingRun, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "processingRunRepository.GetLatest")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var run models.ProcessingRun
	if err := r.db.WithContext(ctx).Order("started_at DESC").First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &run, nil
}

// List retrieves processing runs, newest first
func (r *processingRunRepository) List(ctx context.Context, limit, offset int) ([]*models.ProcessingRun, int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "processingRunRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var runs []*models.ProcessingRun
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.ProcessingRun{}).Count(&total).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, 0, err
	}
	return runs, total, nil
}
