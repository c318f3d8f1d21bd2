package models

import (
	"time"

	"github.com/customeros/mailvault/internal/enum"
)

// ProcessingContext pairs one attachment with the message it arrived on.
// It is the unit of work submitted to the processing pool.
type ProcessingContext struct {
	MessageID  string
	Sender     string
	Subject    string
	Attachment Attachment
}

// ProcessingOutcome reports how one attachment fared. Elapsed is recorded
// for failures as well as successes.
type ProcessingOutcome struct {
	MessageID  string
	Filename   string
	Success    bool
	StorageKey string
	Error      string
	Elapsed    time.Duration
}

// RunSummary aggregates one batch run. Counters follow the funnel:
// ProcessedAttachments <= EligibleAttachments <= TotalAttachments.
type RunSummary struct {
	TotalEmails           int
	EmailsWithAttachments int
	TotalAttachments      int
	EligibleAttachments   int
	ProcessedAttachments  int
	Failures              []string
	StartedAt             time.Time
	CompletedAt           time.Time
}

// Status is success only when every eligible attachment ended up processed.
// Policy rejections do not count against it.
func (s RunSummary) Status() enum.RunStatus {
	if s.ProcessedAttachments == s.EligibleAttachments {
		return enum.RunStatusSuccess
	}
	return enum.RunStatusPartial
}

func (s RunSummary) FailedCount() int {
	return s.EligibleAttachments - s.ProcessedAttachments
}

// MissingAttachments flags batches where messages arrived but none of them
// carried a single attachment.
func (s RunSummary) MissingAttachments() bool {
	return s.TotalEmails > 0 && s.EmailsWithAttachments == 0
}

func (s RunSummary) Duration() time.Duration {
	return s.CompletedAt.Sub(s.StartedAt)
}
