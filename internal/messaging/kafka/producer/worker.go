package producer

import (
	"context"
	"time"

	"go-payroll/internal/messaging/kafka"

	"go.uber.org/zap"
)

const batchSize = 50

// ProcessOutboxEvents relays pending outbox rows to Kafka until ctx is done.
// Rows that fail to publish are retried later with backoff by the repository.
func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	pollInterval time.Duration,
) {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}

	log := logger.Named("kafka.producer.worker")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Info("outbox worker started", zap.Duration("poll_interval", pollInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stopped")
			return
		case <-ticker.C:
			// Drain backlogs without waiting a full tick per batch.
			for ctx.Err() == nil {
				n, err := processPendingEvents(ctx, repo, writer, log)
				if err != nil {
					log.Error("process outbox events failed", zap.Error(err))
					break
				}
				if n < batchSize {
					break
				}
			}
		}
	}
}

// processPendingEvents publishes one batch and returns how many were sent.
func processPendingEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
) (int, error) {
	events, err := repo.ListPending(ctx, batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	logger.Debug("processing pending outbox events", zap.Int("count", len(events)))

	sent := 0
	for _, event := range events {
		log := logger.With(
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("topic", event.Topic),
			zap.String("request_id", event.RequestID),
		)

		if err := publishEvent(ctx, writer, event); err != nil {
			log.Error("publish outbox event failed", zap.Int("retry_count", event.RetryCount), zap.Error(err))
			if markErr := repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				log.Error("mark outbox failed failed", zap.Error(markErr))
			} else if event.RetryCount+1 >= kafka.MaxOutboxAttempts {
				log.Warn("outbox event parked as dead", zap.Int("attempts", event.RetryCount+1))
			}
			continue
		}

		if err := repo.MarkSent(ctx, event.ID); err != nil {
			log.Error("mark outbox sent failed", zap.Error(err))
			continue
		}

		sent++
		log.Info("outbox event sent")
	}

	return sent, nil
}
