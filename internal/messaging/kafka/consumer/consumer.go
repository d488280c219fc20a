package consumer

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go-payroll/internal/assignment"
	"go-payroll/internal/events"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/dateutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader the consumers need.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// handleFunc processes one message and reports whether it is done with.
// Returning false marks a transient failure: the same message is handled
// again after a backoff, and nothing past it is fetched until it succeeds.
type handleFunc func(ctx context.Context, msg kafkago.Message) bool

// Backoff between attempts on one message: 500ms, 1s, 2s ... capped at 30s.
var (
	retryInitialBackoff = 500 * time.Millisecond
	retryMaxBackoff     = 30 * time.Second
)

func consume(ctx context.Context, reader MessageReader, log *zap.Logger, handle handleFunc) {
	log.Info("consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			continue
		}

		if !handleUntilDone(ctx, msg, log, handle) {
			// Cancelled mid-retry; the uncommitted offset is redelivered
			// to whichever member owns the partition next.
			log.Info("consumer stopped", zap.Int64("pending_offset", msg.Offset))
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message failed",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// handleUntilDone retries handle on msg with exponential backoff. It returns
// false only when ctx ends before the message is done.
func handleUntilDone(ctx context.Context, msg kafkago.Message, log *zap.Logger, handle handleFunc) bool {
	backoff := retryInitialBackoff
	for attempt := 1; ; attempt++ {
		if handle(ctx, msg) {
			return true
		}

		log.Warn("message failed, retrying",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
		backoff = min(backoff*2, retryMaxBackoff)
	}
}

// permanent reports whether retrying err can never succeed.
func permanent(err error) bool {
	return apperror.ToHTTP(err).Status < http.StatusInternalServerError
}

// ConsumeEmployeeLifecycle closes the employee-level template assignments of
// terminated employees and drops cached resolutions when an employee changes
// site, since the site fallback of every cached result may have moved.
func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	assignments assignment.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_lifecycle")
	consume(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) bool {
		return handleEmployeeLifecycle(ctx, msg, assignments, log)
	})
}

func handleEmployeeLifecycle(ctx context.Context, msg kafkago.Message, assignments assignment.Service, log *zap.Logger) bool {
	var event events.EmployeeLifecycleEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode employee lifecycle event failed", zap.Error(err))
		return true
	}

	log = log.With(
		zap.String("event_type", event.EventType),
		zap.String("employee_id", event.EmployeeID),
		zap.String("company_id", event.CompanyID),
	)

	switch event.EventType {
	case events.EventEmployeeTerminated:
		return handleTermination(ctx, event, assignments, log)
	case events.EventEmployeeTransferred:
		return handleTransfer(ctx, event, assignments, log)
	default:
		return true
	}
}

func handleTransfer(ctx context.Context, event events.EmployeeLifecycleEvent, assignments assignment.Service, log *zap.Logger) bool {
	if err := assignments.InvalidateCompany(ctx, event.CompanyID); err != nil {
		if permanent(err) {
			log.Warn("skip employee_transferred event", zap.Error(err))
			return true
		}
		log.Error("invalidate assignment cache failed", zap.Error(err))
		return false
	}
	return true
}

func handleTermination(ctx context.Context, event events.EmployeeLifecycleEvent, assignments assignment.Service, log *zap.Logger) bool {
	at, err := terminationDate(event)
	if err != nil {
		log.Error("invalid termination date", zap.String("termination_date", event.TerminationDate))
		return true
	}

	closed, err := assignments.CloseForEmployee(ctx, event.CompanyID, event.EmployeeID, at)
	if err != nil {
		if permanent(err) {
			log.Warn("skip employee_terminated event", zap.Error(err))
			return true
		}
		log.Error("close assignments for terminated employee failed", zap.Error(err))
		return false
	}

	log.Info("assignments closed for terminated employee",
		zap.Int("closed", closed),
		zap.String("termination_date", dateutil.Format(at)),
	)
	return true
}

func terminationDate(event events.EmployeeLifecycleEvent) (time.Time, error) {
	if event.TerminationDate != "" {
		return dateutil.Parse(event.TerminationDate)
	}
	if event.OccurredAt.IsZero() {
		return dateutil.Today(), nil
	}
	return dateutil.Truncate(event.OccurredAt), nil
}
