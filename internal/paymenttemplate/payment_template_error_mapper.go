package paymenttemplate

import (
	"errors"

	paymenttemplateerrors "go-payroll/internal/paymenttemplate/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return paymenttemplateerrors.ErrPaymentTemplateNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			if pgErr.ConstraintName == "uq_payment_template_name" {
				return paymenttemplateerrors.ErrPaymentTemplateNameExists
			}
			return paymenttemplateerrors.ErrDuplicateField
		case "23503":
			if pgErr.ConstraintName == "fk_template_fields_field" {
				return paymenttemplateerrors.ErrUnknownField
			}
			return paymenttemplateerrors.ErrTemplateAssigned
		case "22P02":
			return paymenttemplateerrors.ErrPaymentTemplateNotFound
		}
	}

	return err
}
