package bootstrap

import (
	"context"
	"time"

	"go-payroll/internal/shared/contextutil"

	"go.uber.org/zap"
)

// AuditLog is one destructive or privileged action worth keeping.
type AuditLog struct {
	Action  string
	Message string
	ActorID string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}

type ZapAuditLogger struct {
	logger *zap.Logger
}

func NewZapAuditLogger(logger ...*zap.Logger) *ZapAuditLogger {
	l := zap.L().Named("audit")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit")
	}
	return &ZapAuditLogger{logger: l}
}

func (l *ZapAuditLogger) Log(ctx context.Context, entry AuditLog) {
	l.logger.Info("audit event",
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("company_id", contextutil.GetCompanyID(ctx)),
		zap.String("actor_id", entry.ActorID),
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	)
}
