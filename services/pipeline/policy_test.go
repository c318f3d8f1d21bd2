package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/customeros/mailvault/internal/enum"
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

func TestAttachmentPolicy_AcceptsAllowedType(t *testing.T) {
	// Arrange
	policy := NewAttachmentPolicy([]string{"pdf", "docx"}, 1024)

	// Act
	accepted := policy.Accept(models.Attachment{Filename: "report.pdf", Size: 512})

	// Assert
	assert.True(t, accepted)
	assert.Equal(t, enum.RejectionNone, policy.Evaluate(models.Attachment{Filename: "report.pdf", Size: 512}))
}

func TestAttachmentPolicy_ExtensionMatchingIsCaseInsensitive(t *testing.T) {
	// Arrange
	policy := NewAttachmentPolicy([]string{"PDF", " .Docx "}, 1024)

	// Assert
	assert.True(t, policy.Accept(models.Attachment{Filename: "Report.PDF", Size: 10}))
	assert.True(t, policy.Accept(models.Attachment{Filename: "contract.DOCX", Size: 10}))
	assert.False(t, policy.Accept(models.Attachment{Filename: "notes.md", Size: 10}))
}

func TestAttachmentPolicy_RejectsMissingExtension(t *testing.T) {
	// Arrange
	policy := NewAttachmentPolicy([]string{"pdf"}, 1024)

	// Assert
	assert.Equal(t, enum.RejectionNoExtension, policy.Evaluate(models.Attachment{Filename: "README", Size: 10}))
	assert.Equal(t, enum.RejectionNoExtension, policy.Evaluate(models.Attachment{Filename: "", Size: 10}))
	assert.False(t, policy.Accept(models.Attachment{Filename: "README", Size: 10}))
}

func TestAttachmentPolicy_RejectsDisallowedType(t *testing.T) {
	// Arrange
	policy := NewAttachmentPolicy([]string{"pdf", "docx"}, 1024)

	// Act
	reason := policy.Evaluate(models.Attachment{Filename: "image.png", Size: 10})

	// Assert
	assert.Equal(t, enum.RejectionTypeNotAllowed, reason)
}

func TestAttachmentPolicy_SizeCeilingIsInclusive(t *testing.T) {
	// Arrange
	policy := NewAttachmentPolicy([]string{"pdf"}, 1024)

	// Assert
	assert.True(t, policy.Accept(models.Attachment{Filename: "at_limit.pdf", Size: 1024}))
	assert.False(t, policy.Accept(models.Attachment{Filename: "over_limit.pdf", Size: 1025}))
	assert.Equal(t, enum.RejectionSizeOverLimit, policy.Evaluate(models.Attachment{Filename: "over_limit.pdf", Size: 1025}))
}

func TestAttachmentPolicy_EvaluateIsStable(t *testing.T) {
	// Arrange
	policy := NewAttachmentPolicy([]string{"pdf"}, 1024)
	attachment := models.Attachment{Filename: "report.pdf", Size: 2048}

	// Act
	first := policy.Evaluate(attachment)
	second := policy.Evaluate(attachment)

	// Assert
	assert.Equal(t, first, second)
	assert.Equal(t, enum.RejectionSizeOverLimit, first)
}

func TestAttachmentPolicy_ContentIsNotInspected(t *testing.T) {
	// Size comes from the declared size, not from the payload
	policy := NewAttachmentPolicy([]string{"pdf"}, 10)

	attachment := models.Attachment{
		Filename: "mislabeled.pdf",
		Size:     5,
		Content:  make([]byte, 100),
	}

	assert.True(t, policy.Accept(attachment))
}
