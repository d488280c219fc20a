package paymentfield

import (
	"time"

	paymentfielderrors "go-payroll/internal/paymentfield/errors"
	"go-payroll/internal/statutory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentTypeFixed    = "fixed"
	PaymentTypeVariable = "variable"

	CalculationFixed            = "fixed"
	CalculationPercentageOfCTC  = "percentage_of_ctc"
	CalculationStatutoryFormula = "statutory_formula"
)

type PaymentField struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primaryKey"`
	CompanyID           uuid.UUID           `gorm:"type:uuid;not null;index"`
	Name                string              `gorm:"size:120;not null"`
	PaymentType         string              `gorm:"type:varchar(20);not null"`
	CalculationType     string              `gorm:"type:varchar(30);not null"`
	Amount              decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	StatutoryFormulaRef *string             `gorm:"type:varchar(30)"`
	IsDeduction         bool                `gorm:"not null;default:false"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (PaymentField) TableName() string {
	return "payment_fields"
}

// Validate checks the field definition is computable.
func (f PaymentField) Validate() error {
	switch f.PaymentType {
	case PaymentTypeFixed, PaymentTypeVariable:
	default:
		return paymentfielderrors.ErrInvalidPaymentType
	}

	switch f.CalculationType {
	case CalculationFixed, CalculationPercentageOfCTC:
		if !f.Amount.Valid {
			return paymentfielderrors.ErrAmountRequired
		}
		if f.Amount.Decimal.IsNegative() {
			return paymentfielderrors.ErrNegativeAmount
		}
		if f.CalculationType == CalculationPercentageOfCTC && f.Amount.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return paymentfielderrors.ErrPercentageOutOfRange
		}
	case CalculationStatutoryFormula:
		if f.StatutoryFormulaRef == nil || !statutory.IsKnown(*f.StatutoryFormulaRef) {
			return paymentfielderrors.ErrUnknownStatutoryFormula
		}
	default:
		return paymentfielderrors.ErrInvalidCalculationType
	}

	return nil
}
