package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Attachment processing, every 15 minutes
	CronScheduleProcessAttachments string `env:"CRON_SCHEDULE_PROCESS_ATTACHMENTS" envDefault:"0 */15 * * * *"`
}
