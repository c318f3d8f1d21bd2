package mockmail

import (
	"bytes"
	"context"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/mailvault/interfaces"
	"github.com/customeros/mailvault/internal/logger"
	"github.com/customeros/mailvault/internal/models"
	"github.com/customeros/mailvault/internal/tracing"
	"github.com/customeros/mailvault/internal/utils"
)

var (
	samplePDFContent   = []byte("Mock PDF content for testing")
	sampleExcelContent = []byte("Mock Excel content for testing")
	sampleWordContent  = []byte("Mock Word document content for testing")
	sampleTextContent  = []byte("Mock text content for testing")
	sampleCSVContent   = []byte("Mock CSV content for testing")
)

// MockSource serves a fixed set of messages so the pipeline can run without
// a mailbox. The set covers accepted types, an oversized file and types the
// policy rejects.
type MockSource struct {
	log logger.Logger
}

func NewMockSource(log logger.Logger) interfaces.MessageSource {
	return &MockSource{log: log}
}

func (s *MockSource) FetchMessages(ctx context.Context, limit int) ([]models.Message, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "MockSource.FetchMessages")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	messages := SampleMessages()
	messages = append(messages, LargeAttachmentMessage(), UnsupportedFileTypeMessage())

	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}

	s.log.Infof("Serving %d mock messages", len(messages))
	return messages, nil
}

// SampleMessages returns the standard demo set of six messages
func SampleMessages() []models.Message {
	return []models.Message{
		{
			ID:         "email_001",
			Sender:     "finance@company.com",
			Subject:    "Monthly Financial Report - January 2024",
			ReceivedAt: daysAgo(1),
			Attachments: []models.Attachment{
				{
					Filename:    "monthly_financial_report.pdf",
					ContentType: "application/pdf",
					Size:        2048576, // 2MB
					Content:     samplePDFContent,
					Checksum:    "abc123def456",
				},
				{
					Filename:    "budget_analysis.xlsx",
					ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
					Size:        1024000, // 1MB
					Content:     sampleExcelContent,
					Checksum:    "def456ghi789",
				},
			},
		},
		{
			ID:         "email_002",
			Sender:     "billing@vendor.com",
			Subject:    "Invoice #INV-2024-001",
			ReceivedAt: daysAgo(2),
			Attachments: []models.Attachment{
				{
					Filename:    "invoice_INV-2024-001.pdf",
					ContentType: "application/pdf",
					Size:        512000, // 500KB
					Content:     samplePDFContent,
					Checksum:    "ghi789jkl012",
				},
			},
		},
		{
			ID:         "email_003",
			Sender:     "legal@lawfirm.com",
			Subject:    "Contract Documents for Review",
			ReceivedAt: daysAgo(3),
			Attachments: []models.Attachment{
				{
					Filename:    "service_agreement.docx",
					ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
					Size:        1536000, // 1.5MB
					Content:     sampleWordContent,
					Checksum:    "jkl012mno345",
				},
				{
					Filename:    "terms_and_conditions.txt",
					ContentType: "text/plain",
					Size:        25600, // 25KB
					Content:     sampleTextContent,
					Checksum:    "mno345pqr678",
				},
			},
		},
		{
			ID:         "email_004",
			Sender:     "data@company.com",
			Subject:    "Customer Data Export",
			ReceivedAt: daysAgo(4),
			Attachments: []models.Attachment{
				{
					Filename:    "customer_data_export.csv",
					ContentType: "text/csv",
					Size:        3072000, // 3MB
					Content:     sampleCSVContent,
					Checksum:    "pqr678stu901",
				},
			},
		},
		{
			ID:         "email_005",
			Sender:     "project@company.com",
			Subject:    "Project Documentation",
			ReceivedAt: daysAgo(5),
			Attachments: []models.Attachment{
				{
					Filename:    "project_specification.pdf",
					ContentType: "application/pdf",
					Size:        4096000, // 4MB
					Content:     samplePDFContent,
					Checksum:    "stu901vwx234",
				},
				{
					Filename:    "timeline.xlsx",
					ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
					Size:        512000, // 500KB
					Content:     sampleExcelContent,
					Checksum:    "vwx234yza567",
				},
				{
					Filename:    "requirements.docx",
					ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
					Size:        768000, // 750KB
					Content:     sampleWordContent,
					Checksum:    "yza567bcd890",
				},
			},
		},
		{
			ID:         "email_006",
			Sender:     "system@company.com",
			Subject:    "System Logs - Error Analysis",
			ReceivedAt: daysAgo(6),
			Attachments: []models.Attachment{
				{
					Filename:    "error_logs.txt",
					ContentType: "text/plain",
					Size:        102400, // 100KB
					Content:     sampleTextContent,
					Checksum:    "bcd890efg123",
				},
			},
		},
	}
}

// LargeAttachmentMessage returns a message with an unusually large
// attachment for exercising size limits
func LargeAttachmentMessage() models.Message {
	return models.Message{
		ID:         "email_large",
		Sender:     "test@company.com",
		Subject:    "Large File Attachment",
		ReceivedAt: utils.Now(),
		Attachments: []models.Attachment{
			{
				Filename:    "large_file.pdf",
				ContentType: "application/pdf",
				Size:        15 * 1024 * 1024, // 15MB
				Content:     bytes.Repeat([]byte("X"), 15*1024*1024),
				Checksum:    "large_file_hash",
			},
		},
	}
}

// UnsupportedFileTypeMessage returns a message carrying only types the
// default policy rejects
func UnsupportedFileTypeMessage() models.Message {
	return models.Message{
		ID:         "email_unsupported",
		Sender:     "test@company.com",
		Subject:    "Unsupported File Types",
		ReceivedAt: utils.Now(),
		Attachments: []models.Attachment{
			{
				Filename:    "image.png",
				ContentType: "image/png",
				Size:        1024000, // 1MB
				Content:     []byte("Mock PNG content"),
				Checksum:    "png_hash",
			},
			{
				Filename:    "video.mp4",
				ContentType: "video/mp4",
				Size:        2048000, // 2MB
				Content:     []byte("Mock MP4 content"),
				Checksum:    "mp4_hash",
			},
		},
	}
}

func daysAgo(n int) time.Time {
	return utils.Now().Add(-time.Duration(n) * 24 * time.Hour)
}
