package services

import (
	"time"

	"github.com/customeros/mailvault/config"
	"github.com/customeros/mailvault/interfaces"
	"github.com/customeros/mailvault/internal/logger"
	"github.com/customeros/mailvault/internal/repository"
	"github.com/customeros/mailvault/services/events"
	"github.com/customeros/mailvault/services/imap"
	"github.com/customeros/mailvault/services/mockmail"
	"github.com/customeros/mailvault/services/notifier"
	"github.com/customeros/mailvault/services/pipeline"
)

type Services struct {
	EventsService       *events.EventsService
	StorageService      interfaces.StorageService
	MessageSource       interfaces.MessageSource
	NotificationService interfaces.NotificationService
	BatchProcessor      interfaces.BatchProcessor
	ProcessorRunner     interfaces.ProcessorRunner
}

// InitServices wires the processing pipeline and its collaborators. The
// event publisher and the notifier are optional, the pipeline runs without
// them when they are not configured.
func InitServices(
	cfg *config.Config,
	log logger.Logger,
	repos *repository.Repositories,
	attachmentStorage interfaces.StorageService,
	useMockSource bool,
) (*Services, error) {
	// events
	var eventsService *events.EventsService
	var eventPublisher interfaces.EventPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		publisherConfig := &events.PublisherConfig{
			MessageTTL:          events.DefaultMessageTTL,
			MaxRetries:          events.DefaultMaxRetries,
			PublishTimeout:      events.DefaultPublishTimeout,
			ReconnectBackoff:    events.DefaultReconnectBackoff,
			MaxReconnectBackoff: events.DefaultMaxReconnectBackoff,
		}

		es, err := events.NewEventsService(cfg.AppConfig.RabbitMQURL, log, publisherConfig)
		if err != nil {
			return nil, err
		}
		eventsService = es
		eventPublisher = es.Publisher
	}

	// message source
	var source interfaces.MessageSource
	if useMockSource {
		source = mockmail.NewMockSource(log)
	} else {
		source = imap.NewIMAPSource(cfg.IMAPConfig, log)
	}

	// notifications
	var notificationService interfaces.NotificationService
	if cfg.ProcessorConfig.EnableNotifications && cfg.ProcessorConfig.NotificationEmail != "" {
		notificationService = notifier.NewSMTPNotifier(cfg.SMTPConfig, cfg.ProcessorConfig.NotificationEmail, log)
	}

	// pipeline
	maxSizeBytes := int64(cfg.ProcessorConfig.MaxAttachmentSizeMB) * 1024 * 1024
	policy := pipeline.NewAttachmentPolicy(cfg.ProcessorConfig.AttachmentTypes, maxSizeBytes)
	worker := pipeline.NewAttachmentWorker(attachmentStorage, repos.AttachmentRecordRepository, cfg.R2StorageConfig.AttachmentsBucket, log)
	pool := pipeline.NewProcessingPool(cfg.ProcessorConfig.MaxWorkers, worker.Process, log)
	coordinator := pipeline.NewBatchCoordinator(
		source,
		policy,
		pool,
		repos.ProcessingRunRepository,
		eventPublisher,
		notificationService,
		cfg.ProcessorConfig.BatchSize,
		log,
	)
	runner := pipeline.NewRetryRunner(
		coordinator,
		cfg.ProcessorConfig.RetryAttempts,
		time.Duration(cfg.ProcessorConfig.RetryDelaySeconds)*time.Second,
		log,
	)

	services := Services{
		EventsService:       eventsService,
		StorageService:      attachmentStorage,
		MessageSource:       source,
		NotificationService: notificationService,
		BatchProcessor:      coordinator,
		ProcessorRunner:     runner,
	}

	return &services, nil
}
