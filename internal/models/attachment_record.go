package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/mailvault/internal/utils"
)

// AttachmentRecord is the archive entry kept for every attachment that
// reached object storage.
type AttachmentRecord struct {
	ID            string    `gorm:"type:varchar(50);primaryKey"`
	MessageID     string    `gorm:"type:varchar(255);index"`
	Sender        string    `gorm:"type:varchar(255);index"`
	Filename      string    `gorm:"type:varchar(500)"`
	ContentType   string    `gorm:"type:varchar(255)"`
	Size          int64     `gorm:"default:0"`
	ParserVersion string    `gorm:"type:varchar(20)"`
	ParsedAt      time.Time `gorm:"type:timestamp"`
	UploadedAt    time.Time `gorm:"type:timestamp"`

	// Storage location
	StorageBucket string `gorm:"type:varchar(255)"`
	StorageKey    string `gorm:"type:varchar(1000)"`

	// Mirror of the object metadata written alongside the upload
	Metadata JSONMap `gorm:"type:jsonb"`

	// Standard timestamps
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

// TableName overrides the table name for AttachmentRecord
func (AttachmentRecord) TableName() string {
	return "attachment_records"
}

func (r *AttachmentRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = utils.GenerateNanoIDWithPrefix("file", 12)
	}
	r.CreatedAt = utils.Now()
	return nil
}
