package assignment

import (
	"errors"

	assignmenterrors "go-payroll/internal/assignment/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return assignmenterrors.ErrAssignmentNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23P01":
			// ex_assignment_window backs up the in-transaction overlap check.
			return assignmenterrors.ErrOverlap
		case "23514":
			return assignmenterrors.ErrSubjectMismatch
		case "23503":
			return assignmenterrors.ErrTemplateNotFound
		case "40001", "40P01":
			return assignmenterrors.ErrConcurrentWrite
		case "22P02":
			return assignmenterrors.ErrAssignmentNotFound
		}
	}

	return err
}
