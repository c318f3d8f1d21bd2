package main

import (
	"log"
	"os"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/customeros/mailvault/config"
	"github.com/customeros/mailvault/internal/database"
	"github.com/customeros/mailvault/internal/logger"
	"github.com/customeros/mailvault/internal/repository"
	"github.com/customeros/mailvault/internal/tracing"
	"github.com/customeros/mailvault/server"
	"github.com/customeros/mailvault/services"
	"github.com/customeros/mailvault/services/storage"
)

func main() {
	app := &cli.App{
		Name:  "mailvault",
		Usage: "archives email attachments to object storage",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Run database migrations",
				Action: runMigrations,
			},
			{
				Name:   "server",
				Usage:  "Start the application server",
				Action: runServer,
			},
			{
				Name:  "run",
				Usage: "Execute a single processing batch and exit",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "mock",
						Usage: "process built-in sample messages instead of fetching over IMAP",
					},
				},
				Action: runOnce,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runMigrations(c *cli.Context) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return errors.Wrap(err, "config initialization failed")
	}

	mailvaultDB, err := openDatabase(cfg)
	if err != nil {
		return errors.Wrap(err, "database initialization failed")
	}

	if err := repository.MigrateMailvaultDB(cfg.MailvaultDatabaseConfig, mailvaultDB); err != nil {
		return errors.Wrap(err, "database migration failed")
	}
	log.Println("Database migration completed successfully")

	return nil
}

func runServer(c *cli.Context) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return errors.Wrap(err, "config initialization failed")
	}

	mailvaultDB, err := openDatabase(cfg)
	if err != nil {
		return errors.Wrap(err, "database initialization failed")
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("MailVault starting up...")

	srv, err := server.NewServer(cfg, mailvaultDB)
	if err != nil {
		return errors.Wrap(err, "server setup failed")
	}

	if err := srv.Run(); err != nil {
		return errors.Wrap(err, "server startup failed")
	}

	log.Println("Shutdown complete")

	return nil
}

// runOnce wires the full pipeline, runs one batch through the retry
// runner and exits. With --mock the IMAP source is replaced by built-in
// sample messages so the pipeline can be exercised without a mailbox.
func runOnce(c *cli.Context) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return errors.Wrap(err, "config initialization failed")
	}

	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		return errors.Wrap(err, "tracer initialization failed")
	}
	defer closer.Close()
	opentracing.SetGlobalTracer(tracer)

	mailvaultDB, err := openDatabase(cfg)
	if err != nil {
		return errors.Wrap(err, "database initialization failed")
	}

	attachmentStorage := storage.NewR2StorageService(
		cfg.R2StorageConfig.AccountID,
		cfg.R2StorageConfig.AccessKeyID,
		cfg.R2StorageConfig.AccessKeySecret,
		cfg.R2StorageConfig.AttachmentsBucket,
		false,
	)
	repos := repository.InitRepositories(mailvaultDB, attachmentStorage)

	svcs, err := services.InitServices(cfg, appLogger, repos, attachmentStorage, c.Bool("mock"))
	if err != nil {
		return errors.Wrap(err, "service initialization failed")
	}
	if svcs.EventsService != nil {
		defer svcs.EventsService.Close()
	}

	summary, err := svcs.ProcessorRunner.Run(c.Context)
	if err != nil {
		return cli.Exit(errors.Wrap(err, "processing failed").Error(), 1)
	}

	log.Printf("Processing complete: %d/%d attachments archived across %d emails",
		summary.ProcessedAttachments, summary.EligibleAttachments, summary.TotalEmails)

	return nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	return database.InitMailvaultDatabase(&database.DatabaseConfig{
		DBName:          cfg.MailvaultDatabaseConfig.DBName,
		Host:            cfg.MailvaultDatabaseConfig.Host,
		Port:            cfg.MailvaultDatabaseConfig.Port,
		User:            cfg.MailvaultDatabaseConfig.User,
		Password:        cfg.MailvaultDatabaseConfig.Password,
		MaxConn:         cfg.MailvaultDatabaseConfig.MaxConn,
		MaxIdleConn:     cfg.MailvaultDatabaseConfig.MaxIdleConn,
		ConnMaxLifetime: cfg.MailvaultDatabaseConfig.ConnMaxLifetime,
		LogLevel:        cfg.MailvaultDatabaseConfig.LogLevel,
		SSLMode:         cfg.MailvaultDatabaseConfig.SSLMode,
	})
}
