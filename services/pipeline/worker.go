package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/mailvault/interfaces"
	"github.com/customeros/mailvault/internal/logger"
	"github.com/customeros/mailvault/internal/models"
	"github.com/customeros/mailvault/internal/tracing"
	"github.com/customeros/mailvault/internal/utils"
)

// ParserVersion stamps every record the worker produces. Content parsing is
// bookkeeping only for now, deeper parsing belongs to a later version.
const ParserVersion = "1.0.0"

// AttachmentWorker processes one attachment at a time: it builds the archive
// record, uploads the payload under a date-based key and reports a typed
// outcome. Every failure ends up in the outcome, never past it.
type AttachmentWorker struct {
	storage interfaces.StorageService
	records interfaces.AttachmentRecordRepository
	bucket  string
	log     logger.Logger
}

func NewAttachmentWorker(
	storage interfaces.StorageService,
	records interfaces.AttachmentRecordRepository,
	bucket string,
	log logger.Logger,
) *AttachmentWorker {
	return &AttachmentWorker{
		storage: storage,
		records: records,
		bucket:  bucket,
		log:     log,
	}
}

// Process runs the parse and persist steps for a single attachment. It is
// self-contained and safe to call from any number of goroutines.
func (w *AttachmentWorker) Process(ctx context.Context, item models.ProcessingContext) models.ProcessingOutcome {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AttachmentWorker.Process")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("filename", item.Attachment.Filename)

	w.log.Infof("Processing attachment: %s from message: %s", item.Attachment.Filename, item.Subject)

	outcome := models.ProcessingOutcome{
		MessageID: item.MessageID,
		Filename:  item.Attachment.Filename,
	}

	start := time.Now()

	record := w.parse(item)

	uploadedAt := utils.Now()
	key := storageKey(uploadedAt, item.Attachment.Filename)
	metadata := map[string]string{
		"content_type":   item.Attachment.ContentType,
		"original_size":  strconv.FormatInt(item.Attachment.Size, 10),
		"parsed_at":      record.ParsedAt.Format(time.RFC3339),
		"parser_version": record.ParserVersion,
		"uploaded_at":    uploadedAt.Format(time.RFC3339),
	}

	err := w.storage.Upload(ctx, key, item.Attachment.Content, item.Attachment.ContentType, metadata)
	if err != nil {
		tracing.TraceErr(span, err)
		w.log.Errorf("Upload failed for %s: %v", item.Attachment.Filename, err)
		outcome.Error = err.Error()
		outcome.Elapsed = time.Since(start)
		return outcome
	}

	outcome.Success = true
	outcome.StorageKey = key

	record.StorageKey = key
	record.UploadedAt = uploadedAt
	record.Metadata = toJSONMap(metadata)
	if w.records != nil {
		if err := w.records.Create(ctx, record); err != nil {
			// The payload is already archived, a missing row is recoverable
			tracing.TraceErr(span, err)
			w.log.Warnf("Failed to save archive record for %s: %v", item.Attachment.Filename, err)
		}
	}

	outcome.Elapsed = time.Since(start)
	w.log.Infof("Successfully processed %s", item.Attachment.Filename)
	return outcome
}

// parse builds the bookkeeping record for an attachment. It cannot fail,
// content interpretation is out of scope.
func (w *AttachmentWorker) parse(item models.ProcessingContext) *models.AttachmentRecord {
	return &models.AttachmentRecord{
		MessageID:     item.MessageID,
		Sender:        item.Sender,
		Filename:      item.Attachment.Filename,
		ContentType:   item.Attachment.ContentType,
		Size:          item.Attachment.Size,
		ParserVersion: ParserVersion,
		ParsedAt:      utils.Now(),
		StorageBucket: w.bucket,
	}
}

// storageKey derives the object key from the upload date and file name
func storageKey(t time.Time, filename string) string {
	return fmt.Sprintf("%s/%s", t.Format("2006/01/02"), filename)
}

func toJSONMap(m map[string]string) models.JSONMap {
	out := make(models.JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
