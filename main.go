package main

import (
	"context"
	"log"
	"os"
	"time"

	"katalog/internal/config"
	"katalog/internal/database"
	"katalog/internal/events"
	"katalog/internal/repositories"
	"katalog/internal/server"
	"katalog/pkg/rabbitmq"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, cfg.LogLevel == "debug")
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	if cfg.SeedDemoData {
		err := database.Seed(context.Background(),
			repositories.NewGORMUserRepository(db),
			repositories.NewGORMProductRepository(db),
			cfg.SeedPassword, logger.Named("seed"))
		if err != nil {
			logger.Fatal("failed to seed database", zap.Error(err))
		}
	}

	// --- Product events ---
	publisher, err := newPublisher(cfg, logger.Named("events"))
	if err != nil {
		logger.Fatal("failed to initialize event publisher", zap.Error(err))
	}

	// --- HTTP ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := server.New(cfg, server.Deps{
		DB:        db,
		Publisher: publisher,
		Registry:  reg,
		Logger:    logger,
		AccessLog: true,
	})

	go func() {
		logger.Info("starting server", zap.String("addr", cfg.AppPort))
		if err := app.Listen(cfg.AppPort); err != nil {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http": func(ctx context.Context) error {
				return app.ShutdownWithContext(ctx)
			},
			"events": func(ctx context.Context) error {
				return publisher.Close()
			},
			"database": func(ctx context.Context) error {
				return database.Close(db)
			},
		},
	)

	exitCode := <-wait
	logger.Info("server stopped", zap.Int("exit_code", exitCode))
	logger.Sync()
	os.Exit(exitCode)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}

func newPublisher(cfg config.Config, logger *zap.Logger) (events.Publisher, error) {
	switch cfg.EventsDriver {
	case config.EventsAMQP:
		client, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:    cfg.RabbitMQURL,
			Queues: []string{events.DefaultQueue},
		})
		if err != nil {
			return nil, err
		}
		logger.Info("publishing product events to RabbitMQ", zap.String("queue", events.DefaultQueue))
		return events.NewAMQPPublisher(client, logger), nil
	case config.EventsKafka:
		logger.Info("publishing product events to Kafka",
			zap.String("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger), nil
	default:
		return events.NoopPublisher{}, nil
	}
}
