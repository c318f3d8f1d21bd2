package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/customeros/mailvault/internal/logger"
	"github.com/customeros/mailvault/internal/tracing"
)

type Config struct {
	AppConfig               *AppConfig
	Logger                  *logger.Config
	Tracing                 *tracing.JaegerConfig
	MailvaultDatabaseConfig *MailvaultDatabaseConfig
	R2StorageConfig         *R2StorageConfig
	IMAPConfig              *IMAPConfig
	SMTPConfig              *SMTPConfig
	ProcessorConfig         *ProcessorConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:               &AppConfig{},
		Logger:                  &logger.Config{},
		Tracing:                 &tracing.JaegerConfig{},
		MailvaultDatabaseConfig: &MailvaultDatabaseConfig{},
		R2StorageConfig:         &R2StorageConfig{},
		IMAPConfig:              &IMAPConfig{},
		SMTPConfig:              &SMTPConfig{},
		ProcessorConfig:         &ProcessorConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading mailvault config: %v", err)
	}

	return config, nil
}
