package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-payroll/internal/config"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/messaging/kafka/producer"
	"go-payroll/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker relays outbox events to Kafka and purges sent rows on a schedule.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, cfg.Database.MaxRetries)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.Database.MaxRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	purger, err := producer.SchedulePurge(ctx, outboxRepo, cfg.Worker.OutboxPurgeSpec, cfg.Worker.OutboxRetention, logger)
	if err != nil {
		return err
	}

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		cfg.Worker.OutboxPollInterval,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()
	<-purger.Stop().Done()

	return nil
}
