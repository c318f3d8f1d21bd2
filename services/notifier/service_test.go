package notifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailvault/config"
	"github.com/customeros/mailvault/internal/logger"
	"github.com/customeros/mailvault/internal/models"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func TestReportSubjectReflectsStatus(t *testing.T) {
	// Arrange
	success := models.RunSummary{EligibleAttachments: 2, ProcessedAttachments: 2}
	partial := models.RunSummary{EligibleAttachments: 2, ProcessedAttachments: 1}

	// Assert
	assert.Equal(t, "Attachment Processor Report - Success", reportSubject(success))
	assert.Equal(t, "Attachment Processor Report - Partial", reportSubject(partial))
}

func TestReportBodyListsAllCounters(t *testing.T) {
	// Arrange
	summary := models.RunSummary{
		TotalEmails:           3,
		EmailsWithAttachments: 2,
		TotalAttachments:      4,
		EligibleAttachments:   3,
		ProcessedAttachments:  2,
		Failures:              []string{"bad.pdf: upload failed"},
	}

	// Act
	text := reportText(summary)
	htmlBody := reportHTML(summary)

	// Assert
	assert.Contains(t, text, "Status: partial")
	assert.Contains(t, text, "Total Emails Processed: 3")
	assert.Contains(t, text, "Emails with Attachments: 2")
	assert.Contains(t, text, "Total Attachments Found: 4")
	assert.Contains(t, text, "Eligible Attachments: 3")
	assert.Contains(t, text, "Successfully Processed: 2")
	assert.Contains(t, text, "Failed to Process: 1")
	assert.Contains(t, text, "bad.pdf: upload failed")

	assert.Contains(t, htmlBody, "<h2>Attachment Processor Report</h2>")
	assert.Contains(t, htmlBody, "<li>Successfully Processed: 2</li>")
	assert.Contains(t, htmlBody, "<li>bad.pdf: upload failed</li>")
}

func TestReportFlagsRunsWithoutAttachments(t *testing.T) {
	// Arrange
	empty := models.RunSummary{TotalEmails: 2}
	withAttachments := models.RunSummary{TotalEmails: 2, EmailsWithAttachments: 1}

	// Assert
	assert.Contains(t, reportText(empty), "Warning: No attachments found in any emails.")
	assert.Contains(t, reportHTML(empty), "No attachments found in any emails.")
	assert.NotContains(t, reportText(withAttachments), "Warning")
	assert.NotContains(t, reportHTML(withAttachments), "Warning")
}

func TestBuildMessageIsMultipartAlternative(t *testing.T) {
	// Arrange
	s := &SMTPNotifier{
		config:    &config.SMTPConfig{FromAddress: "vault@customeros.ai"},
		recipient: "ops@customeros.ai",
		log:       getLogger(),
	}

	// Act
	buffer, err := s.buildMessage("Attachment Processor Report - Success", "text body", "<p>html body</p>")

	// Assert
	require.NoError(t, err)
	raw := buffer.String()
	assert.Contains(t, raw, "From: vault@customeros.ai")
	assert.Contains(t, raw, "To: ops@customeros.ai")
	assert.Contains(t, raw, "Subject: Attachment Processor Report - Success")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/plain; charset=UTF-8")
	assert.Contains(t, raw, "text/html; charset=UTF-8")
	assert.Contains(t, raw, "text body")
	assert.Contains(t, raw, "<p>html body</p>")
	assert.Contains(t, raw, "Message-ID: <")
}

func TestSendRunReportSkipsWhenUnconfigured(t *testing.T) {
	// Arrange
	missingRecipient := NewSMTPNotifier(&config.SMTPConfig{Host: "smtp.example.com"}, "", getLogger())
	missingHost := NewSMTPNotifier(&config.SMTPConfig{}, "ops@customeros.ai", getLogger())

	// Assert
	assert.NoError(t, missingRecipient.SendRunReport(context.Background(), models.RunSummary{}))
	assert.NoError(t, missingHost.SendRunReport(context.Background(), models.RunSummary{}))
}

func TestSendRunReportRejectsInvalidRecipient(t *testing.T) {
	// Arrange
	notifier := NewSMTPNotifier(&config.SMTPConfig{Host: "smtp.example.com"}, "not-an-address", getLogger())

	// Act
	err := notifier.SendRunReport(context.Background(), models.RunSummary{})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid address")
}
