package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/mailvault/config"
	"github.com/customeros/mailvault/interfaces"
	"github.com/customeros/mailvault/internal/models"
)

type Repositories struct {
	AttachmentRecordRepository interfaces.AttachmentRecordRepository
	ProcessingRunRepository    interfaces.ProcessingRunRepository
}

func InitRepositories(mailvaultDB *gorm.DB, attachmentStorage interfaces.StorageService) *Repositories {
	return &Repositories{
		AttachmentRecordRepository: NewAttachmentRecordRepository(mailvaultDB, attachmentStorage),
		ProcessingRunRepository:    NewProcessingRunRepository(mailvaultDB),
	}
}

func MigrateMailvaultDB(dbConfig *config.MailvaultDatabaseConfig, mailvaultDB *gorm.DB) error {
	db, err := mailvaultDB.DB()
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(5)

	err = mailvaultDB.AutoMigrate(
		&models.AttachmentRecord{},
		&models.ProcessingRun{},
	)

	db.Close()

	db, _ = mailvaultDB.DB()
	db.SetMaxIdleConns(dbConfig.MaxIdleConn)
	db.SetMaxOpenConns(dbConfig.MaxConn)
	db.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Minute)

	return err
}
