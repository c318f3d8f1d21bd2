package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailvault/internal/models"
)

type storedObject struct {
	key         string
	data        []byte
	contentType string
	metadata    map[string]string
}

type fakeStorage struct {
	mu        sync.Mutex
	uploads   []storedObject
	uploadErr error
}

func (f *fakeStorage) Upload(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, storedObject{key: key, data: data, contentType: contentType, metadata: metadata})
	return nil
}

func (f *fakeStorage) Download(ctx context.Context, key string) ([]byte, error) {
	return nil, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	return nil
}

type fakeRecordRepo struct {
	mu        sync.Mutex
	created   []*models.AttachmentRecord
	createErr error
}

func (f *fakeRecordRepo) Create(ctx context.Context, record *models.AttachmentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, record)
	return nil
}

func (f *fakeRecordRepo) GetByID(ctx context.Context, id string) (*models.AttachmentRecord, error) {
	return nil, nil
}

func (f *fakeRecordRepo) List(ctx context.Context, limit, offset int) ([]*models.AttachmentRecord, int64, error) {
	return nil, 0, nil
}

func (f *fakeRecordRepo) GetData(ctx context.Context, id string) ([]byte, error) {
	return nil, nil
}

func (f *fakeRecordRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func testItem() models.ProcessingContext {
	return models.ProcessingContext{
		MessageID: "email_001",
		Sender:    "finance@company.com",
		Subject:   "Monthly Financial Report",
		Attachment: models.Attachment{
			Filename:    "report.pdf",
			ContentType: "application/pdf",
			Size:        2048,
			Content:     []byte("%PDF-1.4 test content"),
		},
	}
}

func TestAttachmentWorker_ProcessSuccess(t *testing.T) {
	// Arrange
	storage := &fakeStorage{}
	records := &fakeRecordRepo{}
	worker := NewAttachmentWorker(storage, records, "attachments", getLogger())
	item := testItem()

	// Act
	outcome := worker.Process(context.Background(), item)

	// Assert
	assert.True(t, outcome.Success)
	assert.Equal(t, "email_001", outcome.MessageID)
	assert.Equal(t, "report.pdf", outcome.Filename)
	assert.Empty(t, outcome.Error)
	assert.Greater(t, outcome.Elapsed, time.Duration(0))

	today := time.Now().UTC().Format("2006/01/02")
	assert.Equal(t, today+"/report.pdf", outcome.StorageKey)

	require.Len(t, storage.uploads, 1)
	uploaded := storage.uploads[0]
	assert.Equal(t, outcome.StorageKey, uploaded.key)
	assert.Equal(t, item.Attachment.Content, uploaded.data)
	assert.Equal(t, "application/pdf", uploaded.contentType)
}

func TestAttachmentWorker_UploadMetadataShape(t *testing.T) {
	// Arrange
	storage := &fakeStorage{}
	worker := NewAttachmentWorker(storage, &fakeRecordRepo{}, "attachments", getLogger())

	// Act
	worker.Process(context.Background(), testItem())

	// Assert
	require.Len(t, storage.uploads, 1)
	metadata := storage.uploads[0].metadata

	assert.Len(t, metadata, 5)
	assert.Equal(t, "application/pdf", metadata["content_type"])
	assert.Equal(t, "2048", metadata["original_size"])
	assert.Equal(t, ParserVersion, metadata["parser_version"])

	_, err := time.Parse(time.RFC3339, metadata["parsed_at"])
	assert.NoError(t, err)
	_, err = time.Parse(time.RFC3339, metadata["uploaded_at"])
	assert.NoError(t, err)
}

func TestAttachmentWorker_ArchiveRecordIsPersisted(t *testing.T) {
	// Arrange
	records := &fakeRecordRepo{}
	worker := NewAttachmentWorker(&fakeStorage{}, records, "attachments", getLogger())

	// Act
	outcome := worker.Process(context.Background(), testItem())

	// Assert
	require.Len(t, records.created, 1)
	record := records.created[0]
	assert.Equal(t, "email_001", record.MessageID)
	assert.Equal(t, "finance@company.com", record.Sender)
	assert.Equal(t, "report.pdf", record.Filename)
	assert.Equal(t, int64(2048), record.Size)
	assert.Equal(t, ParserVersion, record.ParserVersion)
	assert.Equal(t, "attachments", record.StorageBucket)
	assert.Equal(t, outcome.StorageKey, record.StorageKey)
	assert.False(t, record.ParsedAt.IsZero())
	assert.False(t, record.UploadedAt.IsZero())
	assert.NotEmpty(t, record.Metadata)
}

func TestAttachmentWorker_UploadFailureProducesFailedOutcome(t *testing.T) {
	// Arrange
	storage := &fakeStorage{uploadErr: errors.New("bucket unavailable")}
	records := &fakeRecordRepo{}
	worker := NewAttachmentWorker(storage, records, "attachments", getLogger())

	// Act
	outcome := worker.Process(context.Background(), testItem())

	// Assert
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "bucket unavailable")
	assert.Empty(t, outcome.StorageKey)
	assert.Greater(t, outcome.Elapsed, time.Duration(0))
	assert.Empty(t, records.created)
}

func TestAttachmentWorker_RecordSaveFailureDoesNotFailOutcome(t *testing.T) {
	// The payload is archived before the record write, a failed record
	// write must not turn the outcome into a failure
	storage := &fakeStorage{}
	records := &fakeRecordRepo{createErr: errors.New("database down")}
	worker := NewAttachmentWorker(storage, records, "attachments", getLogger())

	outcome := worker.Process(context.Background(), testItem())

	assert.True(t, outcome.Success)
	assert.NotEmpty(t, outcome.StorageKey)
	assert.Len(t, storage.uploads, 1)
}

func TestAttachmentWorker_NilRecordRepositoryIsTolerated(t *testing.T) {
	// Arrange
	storage := &fakeStorage{}
	worker := NewAttachmentWorker(storage, nil, "attachments", getLogger())

	// Act
	outcome := worker.Process(context.Background(), testItem())

	// Assert
	assert.True(t, outcome.Success)
	assert.Len(t, storage.uploads, 1)
}
