package pipeline

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailvault/dto"
	"github.com/customeros/mailvault/interfaces"
	"github.com/customeros/mailvault/internal/enum"
	"github.com/customeros/mailvault/internal/logger"
	"github.com/customeros/mailvault/internal/models"
	"github.com/customeros/mailvault/internal/tracing"
	"github.com/customeros/mailvault/internal/utils"
)

// BatchCoordinator drives one processing run end to end: fetch a batch,
// filter the attachments, fan the eligible ones out to the pool and report
// the result. Run persistence, event publishing and notifications are all
// best-effort, only fetch failures abort a run.
type BatchCoordinator struct {
	source    interfaces.MessageSource
	policy    *AttachmentPolicy
	pool      *ProcessingPool
	runs      interfaces.ProcessingRunRepository
	events    interfaces.EventPublisher
	notifier  interfaces.NotificationService
	batchSize int
	log       logger.Logger
}

func NewBatchCoordinator(
	source interfaces.MessageSource,
	policy *AttachmentPolicy,
	pool *ProcessingPool,
	runs interfaces.ProcessingRunRepository,
	events interfaces.EventPublisher,
	notifier interfaces.NotificationService,
	batchSize int,
	log logger.Logger,
) *BatchCoordinator {
	return &BatchCoordinator{
		source:    source,
		policy:    policy,
		pool:      pool,
		runs:      runs,
		events:    events,
		notifier:  notifier,
		batchSize: batchSize,
		log:       log,
	}
}

// ProcessBatch executes a single run. An empty fetch is a quiet no-op, no
// run record and no notification. A fetch error is returned to the caller
// so the retry layer can decide what to do with it.
func (c *BatchCoordinator) ProcessBatch(ctx context.Context) (models.RunSummary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "BatchCoordinator.ProcessBatch")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	summary := models.RunSummary{StartedAt: utils.Now()}

	messages, err := c.source.FetchMessages(ctx, c.batchSize)
	if err != nil {
		tracing.TraceErr(span, err)
		return summary, errors.Wrap(err, "failed to fetch messages")
	}

	if len(messages) == 0 {
		c.log.Info("No messages to process")
		summary.CompletedAt = utils.Now()
		return summary, nil
	}

	summary.TotalEmails = len(messages)

	var work []models.ProcessingContext
	for _, message := range messages {
		c.log.Infof("Processing message: %s from %s", message.Subject, message.Sender)

		if !message.HasAttachments() {
			c.log.Warnf("No attachments found in message: %s", message.Subject)
			continue
		}
		summary.EmailsWithAttachments++

		for _, attachment := range message.Attachments {
			summary.TotalAttachments++
			if reason := c.policy.Evaluate(attachment); reason != enum.RejectionNone {
				c.log.Infof("Skipping attachment %s: %s", attachment.Filename, reason)
				continue
			}
			summary.EligibleAttachments++
			work = append(work, models.ProcessingContext{
				MessageID:  message.ID,
				Sender:     message.Sender,
				Subject:    message.Subject,
				Attachment: attachment,
			})
		}
	}

	if len(work) > 0 {
		outcomes := c.pool.Run(ctx, work)
		for _, outcome := range outcomes {
			if outcome.Success {
				summary.ProcessedAttachments++
				c.log.Infof("Completed: %s in %.2fs", outcome.Filename, outcome.Elapsed.Seconds())
				continue
			}
			reason := outcome.Error
			if reason == "" {
				reason = "unknown error"
			}
			summary.Failures = append(summary.Failures, fmt.Sprintf("%s: %s", outcome.Filename, reason))
			c.log.Errorf("Failed: %s: %s", outcome.Filename, reason)
		}
	}

	summary.CompletedAt = utils.Now()

	c.log.Info("Processing complete:")
	c.log.Infof("  Total emails: %d", summary.TotalEmails)
	c.log.Infof("  Emails with attachments: %d", summary.EmailsWithAttachments)
	c.log.Infof("  Total attachments found: %d", summary.TotalAttachments)
	c.log.Infof("  Eligible attachments: %d", summary.EligibleAttachments)
	c.log.Infof("  Successfully processed: %d", summary.ProcessedAttachments)

	if summary.MissingAttachments() {
		c.log.Warn("No attachments found in any emails")
	}

	c.recordRun(ctx, span, summary)
	c.notify(ctx, span, summary)

	return summary, nil
}

// recordRun persists the run and announces it. Publishing only happens for
// runs that made it into the database, both steps are best-effort.
func (c *BatchCoordinator) recordRun(ctx context.Context, span opentracing.Span, summary models.RunSummary) {
	if c.runs == nil {
		return
	}

	run := models.NewProcessingRun(summary)
	if err := c.runs.Create(ctx, run); err != nil {
		tracing.TraceErr(span, err)
		c.log.Errorf("Failed to record processing run: %v", err)
		return
	}

	if c.events != nil {
		if err := c.events.PublishDirectEvent(ctx, run.ID, enum.PROCESSING_RUN, dto.RunCompleted{Run: run}); err != nil {
			tracing.TraceErr(span, err)
			c.log.Errorf("Failed to publish run completed event: %v", err)
		}
	}
}

func (c *BatchCoordinator) notify(ctx context.Context, span opentracing.Span, summary models.RunSummary) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.SendRunReport(ctx, summary); err != nil {
		tracing.TraceErr(span, err)
		c.log.Errorf("Failed to send notification: %v", err)
	}
}
