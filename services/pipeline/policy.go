package pipeline

import (
	"strings"

	"github.com/customeros/mailvault/internal/enum"
	"github.com/customeros/mailvault/internal/models"
	"github.com/customeros/mailvault/internal/utils"
)

// AttachmentPolicy decides which attachments are eligible for processing.
// Decisions are pure: same attachment and policy, same answer.
type AttachmentPolicy struct {
	allowedTypes []string
	maxSizeBytes int64
}

func NewAttachmentPolicy(allowedTypes []string, maxSizeBytes int64) *AttachmentPolicy {
	normalized := make([]string, 0, len(allowedTypes))
	for _, t := range allowedTypes {
		t = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(t, ".")))
		if t == "" {
			continue
		}
		normalized = append(normalized, t)
	}

	return &AttachmentPolicy{
		allowedTypes: normalized,
		maxSizeBytes: maxSizeBytes,
	}
}

// Accept reports whether the attachment passes the type and size rules.
func (p *AttachmentPolicy) Accept(attachment models.Attachment) bool {
	return p.Evaluate(attachment) == enum.RejectionNone
}

// Evaluate returns the rejection reason, or RejectionNone when the
// attachment is eligible. Size exactly at the ceiling is accepted.
func (p *AttachmentPolicy) Evaluate(attachment models.Attachment) enum.RejectionReason {
	ext := utils.FileExtension(attachment.Filename)
	if ext == "" {
		return enum.RejectionNoExtension
	}
	if !utils.IsStringInSlice(ext, p.allowedTypes) {
		return enum.RejectionTypeNotAllowed
	}
	if attachment.Size > p.maxSizeBytes {
		return enum.RejectionSizeOverLimit
	}
	return enum.RejectionNone
}

// MaxSizeBytes exposes the configured ceiling for reporting.
func (p *AttachmentPolicy) MaxSizeBytes() int64 {
	return p.maxSizeBytes
}
