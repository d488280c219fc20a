package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go-payroll/internal/assignment"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/config"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/messaging/kafka/consumer"
	"go-payroll/internal/paymenttemplate"
	"go-payroll/internal/payroll"
	"go-payroll/internal/shared/connection"
	"go-payroll/internal/shared/counter"
	"go-payroll/internal/statutory"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const consumerGroup = "go-payroll"

// RunConsumer closes assignments of terminated employees and renders
// payslips for approved payroll.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

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

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Database.MaxRetries)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	audit := bootstrap.NewZapAuditLogger(logger)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	assignmentRepo := assignment.NewRepository(gormDB)

	assignmentService := assignment.NewService(
		sqlDB,
		assignmentRepo,
		outboxRepo,
		redisClient,
		audit,
		cfg.Payroll.ResolveCacheTTL,
		logger,
	)
	payrollService := payroll.NewService(
		sqlDB,
		payroll.NewRepository(gormDB),
		assignmentRepo,
		paymenttemplate.NewRepository(gormDB),
		counter.NewRepository(gormDB),
		outboxRepo,
		statutory.NewCalculator(statutory.RulesFromConfig(cfg.Statutory)),
		audit,
		payroll.Options{
			BuildConcurrency: cfg.Payroll.BuildConcurrency,
			PayslipDir:       cfg.Payroll.PayslipDir,
		},
		logger,
	)

	lifecycleReader := newReader(cfg.Kafka.Broker, events.EmployeeLifecycleTopic)
	defer lifecycleReader.Close()
	approvedReader := newReader(cfg.Kafka.Broker, events.PayrollApprovedTopic)
	defer approvedReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumer.ConsumeEmployeeLifecycle(ctx, lifecycleReader, assignmentService, logger)
	}()
	go func() {
		defer wg.Done()
		consumer.ConsumePayrollApproved(ctx, approvedReader, payrollService, logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	wg.Wait()

	return nil
}

func newReader(broker, topic string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        consumerGroup + "." + topic,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
}
