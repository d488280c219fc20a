package paymentfielderrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrPaymentFieldNotFound = apperror.New(
		apperror.CodeNotFound,
		"payment field not found",
		http.StatusNotFound,
	)
	ErrPaymentFieldNameExists = apperror.New(
		apperror.CodeConflict,
		"payment field with the same name already exists",
		http.StatusConflict,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrAmountRequired = apperror.New(
		apperror.CodeInvalidInput,
		"amount is required for fixed and percentage_of_ctc calculations",
		http.StatusBadRequest,
	)
	ErrNegativeAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount cannot be negative",
		http.StatusBadRequest,
	)
	ErrPercentageOutOfRange = apperror.New(
		apperror.CodeInvalidInput,
		"percentage_of_ctc amount must be between 0 and 100",
		http.StatusBadRequest,
	)
	ErrUnknownStatutoryFormula = apperror.New(
		apperror.CodeInvalidInput,
		"statutory_formula_ref must be one of epf, esi, pt, lwf, gratuity, bonus",
		http.StatusBadRequest,
	)
	ErrInvalidPaymentType = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payment_type",
		http.StatusBadRequest,
	)
	ErrInvalidCalculationType = apperror.New(
		apperror.CodeInvalidInput,
		"invalid calculation_type",
		http.StatusBadRequest,
	)
	ErrPaymentFieldInTemplate = apperror.New(
		apperror.CodeReferenced,
		"payment field is used by a payment template",
		http.StatusConflict,
	)
	ErrPaymentFieldLocked = apperror.New(
		apperror.CodeReferenced,
		"payment field is referenced by an approved payroll entry and cannot change",
		http.StatusConflict,
	)
)
