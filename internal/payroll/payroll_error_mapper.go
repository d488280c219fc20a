package payroll

import (
	"errors"

	payrollerrors "go-payroll/internal/payroll/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// mapRepositoryError translates storage errors. notFound is returned for
// missing rows so entries and runs report their own sentinel.
func mapRepositoryError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			// uq_payroll_entry_period: another build for the same
			// employee and period committed first.
			return payrollerrors.ErrConcurrentWrite
		case "40001", "40P01":
			return payrollerrors.ErrConcurrentWrite
		case "23503":
			return payrollerrors.ErrEmployeeNotInCompany
		case "22P02":
			return notFound
		}
	}

	return err
}
