package cron

import (
	"context"
	"os"
	"testing"

	cronv3 "github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"k8s.io/client-go/kubernetes"

	"github.com/customeros/mailvault/config"
	cron_config "github.com/customeros/mailvault/internal/cron/config"
	"github.com/customeros/mailvault/internal/logger"
	"github.com/customeros/mailvault/internal/models"
)

type mockKubernetesInterface struct {
	kubernetes.Interface
	mock.Mock
}

type stubProcessor struct {
	runs int
}

func (s *stubProcessor) Run(ctx context.Context) (models.RunSummary, error) {
	s.runs++
	return models.RunSummary{}, nil
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func TestNewCronManager(t *testing.T) {
	// Arrange
	cfg := &config.Config{
		Logger: &logger.Config{
			LogLevel: "info",
		},
	}
	log := getLogger()
	k8s := &mockKubernetesInterface{}
	processor := &stubProcessor{}

	// Act
	cm := NewCronManager(cfg, log, k8s, processor)

	// Assert
	assert.NotNil(t, cm)
	assert.Equal(t, cfg, cm.cfg)
	assert.Equal(t, log, cm.log)
	assert.Equal(t, k8s, cm.k8s)
	assert.NotNil(t, cm.jobIDs)
}

func TestCronManager_StartCron(t *testing.T) {
	// Set environment variable for testing
	os.Setenv("CRON_SCHEDULE_HEARTBEAT", "0 * * * * *")
	os.Setenv("CRON_SCHEDULE_PROCESS_ATTACHMENTS", "0 */15 * * * *")
	defer os.Unsetenv("CRON_SCHEDULE_HEARTBEAT")
	defer os.Unsetenv("CRON_SCHEDULE_PROCESS_ATTACHMENTS")

	// Arrange
	cfg := &config.Config{
		Logger: &logger.Config{
			LogLevel: "info",
		},
	}
	log := getLogger()
	k8s := &mockKubernetesInterface{}
	cm := NewCronManager(cfg, log, k8s, &stubProcessor{})

	// Create a mock cron for testing
	mockCron := cronv3.New(cronv3.WithSeconds())

	// Register jobs directly
	var cronConfig cron_config.Config
	cronConfig.CronScheduleHeartbeat = "0 * * * * *"
	cronConfig.CronScheduleProcessAttachments = "0 */15 * * * *"

	// Act - register jobs manually
	heartbeatId, err := mockCron.AddFunc(cronConfig.CronScheduleHeartbeat, func() {})
	assert.NoError(t, err)
	cm.jobIDs["heartbeat"] = heartbeatId

	processId, err := mockCron.AddFunc(cronConfig.CronScheduleProcessAttachments, func() {})
	assert.NoError(t, err)
	cm.jobIDs["process_attachments"] = processId

	cm.cron = mockCron

	// Assert
	assert.NotNil(t, cm.cron)
	assert.Equal(t, 2, len(cm.jobIDs))
}

func TestCronManager_ProcessAttachmentsInvokesRunner(t *testing.T) {
	// Arrange
	cfg := &config.Config{
		Logger: &logger.Config{
			LogLevel: "info",
		},
	}
	processor := &stubProcessor{}
	cm := NewCronManager(cfg, getLogger(), nil, processor)

	// Act
	cm.processAttachments()

	// Assert
	assert.Equal(t, 1, processor.runs)
}

func TestCronManager_Stop(t *testing.T) {
	// Set environment variable for testing
	os.Setenv("CRON_SCHEDULE_HEARTBEAT", "0 * * * * *")
	defer os.Unsetenv("CRON_SCHEDULE_HEARTBEAT")

	// Arrange
	cfg := &config.Config{
		Logger: &logger.Config{
			LogLevel: "info",
		},
	}
	log := getLogger()
	k8s := &mockKubernetesInterface{}
	cm := NewCronManager(cfg, log, k8s, &stubProcessor{})

	// Create a mock cron for testing
	mockCron := cronv3.New()
	mockCron.Start()
	cm.cron = mockCron

	// Act
	cm.Stop()

	// Assert
	select {
	case <-cm.stopCh:
		// Channel is closed as expected
	default:
		t.Error("Stop channel was not closed")
	}
}
