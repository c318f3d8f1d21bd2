package config

type AppConfig struct {
	APIPort     string `env:"PORT,required" envDefault:"12333"`
	APIKey      string `env:"API_KEY,required"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
}

type MailvaultDatabaseConfig struct {
	Host            string `env:"MAILVAULT_POSTGRES_HOST,required"`
	Port            string `env:"MAILVAULT_POSTGRES_PORT,required"`
	User            string `env:"MAILVAULT_POSTGRES_USER,required"`
	DBName          string `env:"MAILVAULT_POSTGRES_DB_NAME,required"`
	Password        string `env:"MAILVAULT_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"MAILVAULT_POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"MAILVAULT_POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"MAILVAULT_POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"MAILVAULT_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"MAILVAULT_POSTGRES_SSL_MODE"`
}

type R2StorageConfig struct {
	AccountID         string `env:"CLOUDFLARE_R2_ACCOUNT_ID,required"`
	AccessKeyID       string `env:"CLOUDFLARE_R2_ACCESS_KEY_ID,required"`
	AccessKeySecret   string `env:"CLOUDFLARE_R2_ACCESS_KEY_SECRET,required"`
	AttachmentsBucket string `env:"BUCKET_NAME_ATTACHMENTS" envDefault:"attachments"`
}

type IMAPConfig struct {
	Server        string `env:"IMAP_SERVER"`
	Port          int    `env:"IMAP_PORT" envDefault:"993"`
	Email         string `env:"EMAIL_ADDRESS"`
	Password      string `env:"EMAIL_PASSWORD"`
	Mailbox       string `env:"IMAP_MAILBOX" envDefault:"INBOX"`
	TargetSender  string `env:"TARGET_SENDER"`
	LookbackHours int    `env:"IMAP_LOOKBACK_HOURS" envDefault:"24"`
}

type SMTPConfig struct {
	Host        string `env:"SMTP_SERVER"`
	Port        int    `env:"SMTP_PORT" envDefault:"587"`
	Username    string `env:"SMTP_USERNAME"`
	Password    string `env:"SMTP_PASSWORD"`
	FromAddress string `env:"SMTP_FROM_ADDRESS"`
	Security    string `env:"SMTP_SECURITY" envDefault:"starttls"`
}

type ProcessorConfig struct {
	AttachmentTypes     []string `env:"ATTACHMENT_TYPES" envDefault:"pdf,doc,docx,txt,csv,xlsx" envSeparator:","`
	MaxAttachmentSizeMB int      `env:"MAX_ATTACHMENT_SIZE_MB" envDefault:"25"`
	MaxWorkers          int      `env:"MAX_WORKERS" envDefault:"4"`
	RetryAttempts       int      `env:"RETRY_ATTEMPTS" envDefault:"3"`
	RetryDelaySeconds   int      `env:"RETRY_DELAY_SECONDS" envDefault:"30"`
	BatchSize           int      `env:"PROCESSING_BATCH_SIZE" envDefault:"10"`
	NotificationEmail   string   `env:"NOTIFICATION_EMAIL"`
	EnableNotifications bool     `env:"ENABLE_NOTIFICATIONS" envDefault:"true"`
}
