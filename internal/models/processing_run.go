package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/customeros/mailvault/internal/enum"
	"github.com/customeros/mailvault/internal/utils"
)

// ProcessingRun records the outcome of one batch run.
type ProcessingRun struct {
	ID                    string         `gorm:"type:uuid;primaryKey"`
	Status                enum.RunStatus `gorm:"type:varchar(20);index"`
	TotalEmails           int            `gorm:"default:0"`
	EmailsWithAttachments int            `gorm:"default:0"`
	TotalAttachments      int            `gorm:"default:0"`
	EligibleAttachments   int            `gorm:"default:0"`
	ProcessedAttachments  int            `gorm:"default:0"`
	FailedAttachments     int            `gorm:"default:0"`
	Failures              pq.StringArray `gorm:"type:text[]"`
	StartedAt             time.Time      `gorm:"type:timestamp"`
	CompletedAt           time.Time      `gorm:"type:timestamp"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
}

// TableName overrides the table name for ProcessingRun
func (ProcessingRun) TableName() string {
	return "processing_runs"
}

func (r *ProcessingRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.CreatedAt = utils.Now()
	return nil
}

// NewProcessingRun builds a run row from a completed batch summary.
func NewProcessingRun(summary RunSummary) *ProcessingRun {
	return &ProcessingRun{
		Status:                summary.Status(),
		TotalEmails:           summary.TotalEmails,
		EmailsWithAttachments: summary.EmailsWithAttachments,
		TotalAttachments:      summary.TotalAttachments,
		EligibleAttachments:   summary.EligibleAttachments,
		ProcessedAttachments:  summary.ProcessedAttachments,
		FailedAttachments:     summary.FailedCount(),
		Failures:              pq.StringArray(summary.Failures),
		StartedAt:             summary.StartedAt,
		CompletedAt:           summary.CompletedAt,
	}
}
