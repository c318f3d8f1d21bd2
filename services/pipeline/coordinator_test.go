package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailvault/dto"
	"github.com/customeros/mailvault/interfaces"
	"github.com/customeros/mailvault/internal/enum"
	"github.com/customeros/mailvault/internal/models"
)

type fakeSource struct {
	mu       sync.Mutex
	messages []models.Message
	err      error
	limits   []int
}

func (f *fakeSource) FetchMessages(ctx context.Context, limit int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	return f.messages, nil
}

type fakeRunRepo struct {
	mu        sync.Mutex
	created   []*models.ProcessingRun
	createErr error
}

func (f *fakeRunRepo) Create(ctx context.Context, run *models.ProcessingRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	// The database hook assigns the id in production
	run.ID = "run-1"
	f.created = append(f.created, run)
	return nil
}

func (f *fakeRunRepo) GetByID(ctx context.Context, id string) (*models.ProcessingRun, error) {
	return nil, nil
}

func (f *fakeRunRepo) GetLatest(ctx context.Context) (*models.ProcessingRun, error) {
	return nil, nil
}

func (f *fakeRunRepo) List(ctx context.Context, limit, offset int) ([]*models.ProcessingRun, int64, error) {
	return nil, 0, nil
}

type publishedEvent struct {
	entityID   string
	entityType enum.EntityType
	message    interface{}
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakeEventPublisher) PublishDirectEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{entityID: entityId, entityType: entityType, message: message})
	return nil
}

func (f *fakeEventPublisher) Close() error {
	return nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	summaries []models.RunSummary
	err       error
}

func (f *fakeNotifier) SendRunReport(ctx context.Context, summary models.RunSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, summary)
	return f.err
}

type recordingProcessor struct {
	mu        sync.Mutex
	filenames []string
	failFor   map[string]string
}

func (p *recordingProcessor) process(ctx context.Context, item models.ProcessingContext) models.ProcessingOutcome {
	p.mu.Lock()
	p.filenames = append(p.filenames, item.Attachment.Filename)
	p.mu.Unlock()

	outcome := models.ProcessingOutcome{
		MessageID: item.MessageID,
		Filename:  item.Attachment.Filename,
		Elapsed:   time.Millisecond,
	}
	if reason, ok := p.failFor[item.Attachment.Filename]; ok {
		outcome.Error = reason
		return outcome
	}
	outcome.Success = true
	return outcome
}

func messageWith(id, sender, subject string, attachments ...models.Attachment) models.Message {
	return models.Message{
		ID:          id,
		Sender:      sender,
		Subject:     subject,
		ReceivedAt:  time.Now().UTC(),
		Attachments: attachments,
	}
}

func newTestCoordinator(
	source interfaces.MessageSource,
	processor *recordingProcessor,
	runs interfaces.ProcessingRunRepository,
	events interfaces.EventPublisher,
	notifier interfaces.NotificationService,
	batchSize int,
) *BatchCoordinator {
	log := getLogger()
	policy := NewAttachmentPolicy([]string{"pdf", "docx", "xlsx", "txt", "csv"}, 25*1024*1024)
	pool := NewProcessingPool(2, processor.process, log)
	return NewBatchCoordinator(source, policy, pool, runs, events, notifier, batchSize, log)
}

func TestBatchCoordinator_EndToEndRun(t *testing.T) {
	// Arrange: one message with a processable pdf and a rejected png,
	// one message with no attachments at all
	source := &fakeSource{messages: []models.Message{
		messageWith("email_001", "finance@company.com", "Report",
			models.Attachment{Filename: "report.pdf", ContentType: "application/pdf", Size: 1024, Content: []byte("pdf")},
			models.Attachment{Filename: "image.png", ContentType: "image/png", Size: 512, Content: []byte("png")},
		),
		messageWith("email_002", "noreply@company.com", "FYI"),
	}}
	processor := &recordingProcessor{}
	runs := &fakeRunRepo{}
	events := &fakeEventPublisher{}
	notifier := &fakeNotifier{}
	coordinator := newTestCoordinator(source, processor, runs, events, notifier, 10)

	// Act
	summary, err := coordinator.ProcessBatch(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalEmails)
	assert.Equal(t, 1, summary.EmailsWithAttachments)
	assert.Equal(t, 2, summary.TotalAttachments)
	assert.Equal(t, 1, summary.EligibleAttachments)
	assert.Equal(t, 1, summary.ProcessedAttachments)
	assert.Empty(t, summary.Failures)
	assert.Equal(t, enum.RunStatusSuccess, summary.Status())
	assert.False(t, summary.MissingAttachments())
	assert.False(t, summary.CompletedAt.IsZero())

	// The rejected attachment never reaches the pool
	assert.Equal(t, []string{"report.pdf"}, processor.filenames)

	require.Len(t, runs.created, 1)
	run := runs.created[0]
	assert.Equal(t, enum.RunStatusSuccess, run.Status)
	assert.Equal(t, 2, run.TotalEmails)
	assert.Equal(t, 1, run.ProcessedAttachments)
	assert.Equal(t, 0, run.FailedAttachments)

	require.Len(t, events.events, 1)
	assert.Equal(t, "run-1", events.events[0].entityID)
	assert.Equal(t, enum.PROCESSING_RUN, events.events[0].entityType)
	payload, ok := events.events[0].message.(dto.RunCompleted)
	require.True(t, ok)
	assert.Equal(t, run, payload.Run)

	require.Len(t, notifier.summaries, 1)
	assert.Equal(t, summary.ProcessedAttachments, notifier.summaries[0].ProcessedAttachments)
}

func TestBatchCoordinator_EmptyFetchIsQuiet(t *testing.T) {
	// Arrange
	source := &fakeSource{}
	processor := &recordingProcessor{}
	runs := &fakeRunRepo{}
	events := &fakeEventPublisher{}
	notifier := &fakeNotifier{}
	coordinator := newTestCoordinator(source, processor, runs, events, notifier, 10)

	// Act
	summary, err := coordinator.ProcessBatch(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalEmails)
	assert.Equal(t, 0, summary.TotalAttachments)
	assert.False(t, summary.CompletedAt.IsZero())
	assert.Empty(t, processor.filenames)
	assert.Empty(t, runs.created)
	assert.Empty(t, events.events)
	assert.Empty(t, notifier.summaries)
}

func TestBatchCoordinator_FetchErrorPropagates(t *testing.T) {
	// Arrange
	source := &fakeSource{err: errors.New("connection refused")}
	processor := &recordingProcessor{}
	notifier := &fakeNotifier{}
	coordinator := newTestCoordinator(source, processor, &fakeRunRepo{}, &fakeEventPublisher{}, notifier, 10)

	// Act
	_, err := coordinator.ProcessBatch(context.Background())

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch messages")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, notifier.summaries)
}

func TestBatchCoordinator_SingleFailureMakesRunPartial(t *testing.T) {
	// Arrange
	source := &fakeSource{messages: []models.Message{
		messageWith("email_001", "a@company.com", "One",
			models.Attachment{Filename: "good.pdf", ContentType: "application/pdf", Size: 100}),
		messageWith("email_002", "b@company.com", "Two",
			models.Attachment{Filename: "bad.pdf", ContentType: "application/pdf", Size: 100}),
	}}
	processor := &recordingProcessor{failFor: map[string]string{"bad.pdf": "upload failed"}}
	runs := &fakeRunRepo{}
	notifier := &fakeNotifier{}
	coordinator := newTestCoordinator(source, processor, runs, &fakeEventPublisher{}, notifier, 10)

	// Act
	summary, err := coordinator.ProcessBatch(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, summary.EligibleAttachments)
	assert.Equal(t, 1, summary.ProcessedAttachments)
	assert.Equal(t, 1, summary.FailedCount())
	assert.Equal(t, enum.RunStatusPartial, summary.Status())
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "bad.pdf: upload failed", summary.Failures[0])

	require.Len(t, runs.created, 1)
	assert.Equal(t, enum.RunStatusPartial, runs.created[0].Status)
	assert.Equal(t, 1, runs.created[0].FailedAttachments)

	require.Len(t, notifier.summaries, 1)
	assert.Equal(t, enum.RunStatusPartial, notifier.summaries[0].Status())
}

func TestBatchCoordinator_MessagesWithoutAttachmentsAreFlagged(t *testing.T) {
	// Arrange
	source := &fakeSource{messages: []models.Message{
		messageWith("email_001", "a@company.com", "One"),
		messageWith("email_002", "b@company.com", "Two"),
	}}
	processor := &recordingProcessor{}
	notifier := &fakeNotifier{}
	coordinator := newTestCoordinator(source, processor, &fakeRunRepo{}, &fakeEventPublisher{}, notifier, 10)

	// Act
	summary, err := coordinator.ProcessBatch(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalEmails)
	assert.Equal(t, 0, summary.EmailsWithAttachments)
	assert.True(t, summary.MissingAttachments())
	assert.Equal(t, enum.RunStatusSuccess, summary.Status())
	assert.Empty(t, processor.filenames)

	require.Len(t, notifier.summaries, 1)
	assert.True(t, notifier.summaries[0].MissingAttachments())
}

func TestBatchCoordinator_BatchSizeReachesSource(t *testing.T) {
	// Arrange
	source := &fakeSource{}
	coordinator := newTestCoordinator(source, &recordingProcessor{}, nil, nil, nil, 7)

	// Act
	_, err := coordinator.ProcessBatch(context.Background())

	// Assert
	require.NoError(t, err)
	require.Len(t, source.limits, 1)
	assert.Equal(t, 7, source.limits[0])
}

func TestBatchCoordinator_NilCollaboratorsAreTolerated(t *testing.T) {
	// Arrange
	source := &fakeSource{messages: []models.Message{
		messageWith("email_001", "a@company.com", "One",
			models.Attachment{Filename: "report.pdf", ContentType: "application/pdf", Size: 100}),
	}}
	coordinator := newTestCoordinator(source, &recordingProcessor{}, nil, nil, nil, 10)

	// Act
	summary, err := coordinator.ProcessBatch(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ProcessedAttachments)
}

func TestBatchCoordinator_EventSkippedWhenRunNotPersisted(t *testing.T) {
	// Arrange
	source := &fakeSource{messages: []models.Message{
		messageWith("email_001", "a@company.com", "One",
			models.Attachment{Filename: "report.pdf", ContentType: "application/pdf", Size: 100}),
	}}
	runs := &fakeRunRepo{createErr: errors.New("database down")}
	events := &fakeEventPublisher{}
	coordinator := newTestCoordinator(source, &recordingProcessor{}, runs, events, &fakeNotifier{}, 10)

	// Act
	summary, err := coordinator.ProcessBatch(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ProcessedAttachments)
	assert.Empty(t, events.events)
}
