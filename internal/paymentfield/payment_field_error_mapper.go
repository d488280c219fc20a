package paymentfield

import (
	"errors"

	paymentfielderrors "go-payroll/internal/paymentfield/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return paymentfielderrors.ErrPaymentFieldNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && pgErr.ConstraintName == "uq_payment_field_name":
			return paymentfielderrors.ErrPaymentFieldNameExists
		case pgErr.Code == "23503":
			return paymentfielderrors.ErrPaymentFieldInTemplate
		case pgErr.Code == "22P02":
			return paymentfielderrors.ErrPaymentFieldNotFound
		}
	}

	return err
}
