package producer

import (
	"context"
	"time"

	"go-payroll/internal/messaging/kafka"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SchedulePurge registers a cron job that deletes sent outbox rows older
// than retention. The returned cron is started; stop it on shutdown.
func SchedulePurge(
	ctx context.Context,
	repo kafka.OutboxRepository,
	spec string,
	retention time.Duration,
	logger *zap.Logger,
) (*cron.Cron, error) {
	log := logger.Named("kafka.producer.purge")

	c := cron.New(cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log})))
	if _, err := c.AddFunc(spec, func() {
		purgeSent(ctx, repo, retention, time.Now(), log)
	}); err != nil {
		return nil, err
	}

	c.Start()
	log.Info("outbox purge scheduled", zap.String("spec", spec), zap.Duration("retention", retention))
	return c, nil
}

func purgeSent(ctx context.Context, repo kafka.OutboxRepository, retention time.Duration, now time.Time, logger *zap.Logger) int64 {
	if ctx.Err() != nil {
		return 0
	}

	n, err := repo.PurgeSent(ctx, now.Add(-retention))
	if err != nil {
		logger.Error("purge sent outbox events failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		logger.Info("purged sent outbox events", zap.Int64("count", n))
	}
	return n
}

// cronLogger adapts zap to cron's logger.
type cronLogger struct {
	l *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
