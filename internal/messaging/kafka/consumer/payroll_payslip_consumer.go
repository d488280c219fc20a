package consumer

import (
	"context"
	"encoding/json"

	"go-payroll/internal/events"
	"go-payroll/internal/payroll"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumePayrollApproved renders payslips for approved entries. Generation
// skips entries that already have a payslip, so redelivery is harmless.
func ConsumePayrollApproved(
	ctx context.Context,
	reader MessageReader,
	payrollService payroll.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.payroll_payslip")
	consume(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) bool {
		return handlePayrollApproved(ctx, msg, payrollService, log)
	})
}

func handlePayrollApproved(ctx context.Context, msg kafkago.Message, payrollService payroll.Service, log *zap.Logger) bool {
	var event events.PayrollApprovedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode payroll approved event failed", zap.Error(err))
		return true
	}

	log = log.With(
		zap.String("company_id", event.CompanyID),
		zap.String("run_id", event.RunID),
		zap.String("event_type", event.EventType),
	)

	generated, err := payrollService.GeneratePayslips(ctx, event.CompanyID, event.EntryIDs)
	if err != nil {
		if permanent(err) {
			log.Warn("skip payroll approved event", zap.Int("generated", generated), zap.Error(err))
			return true
		}
		log.Error("generate payslips failed", zap.Int("generated", generated), zap.Error(err))
		return false
	}

	log.Info("payslips generated",
		zap.Int("generated", generated),
		zap.Int("entries", len(event.EntryIDs)),
	)
	return true
}
