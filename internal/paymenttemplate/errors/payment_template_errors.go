package paymenttemplateerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrPaymentTemplateNotFound = apperror.New(
		apperror.CodeNotFound,
		"payment template not found",
		http.StatusNotFound,
	)
	ErrPaymentTemplateNameExists = apperror.New(
		apperror.CodeConflict,
		"payment template with the same name already exists",
		http.StatusConflict,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrDuplicateField = apperror.New(
		apperror.CodeInvalidInput,
		"a payment field can appear only once in a template",
		http.StatusBadRequest,
	)
	ErrInvalidFieldID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payment field id",
		http.StatusBadRequest,
	)
	ErrUnknownField = apperror.New(
		apperror.CodeInvalidInput,
		"payment field does not exist in this company",
		http.StatusBadRequest,
	)
	ErrTemplateAssigned = apperror.New(
		apperror.CodeReferenced,
		"payment template is referenced by an active assignment",
		http.StatusConflict,
	)
	ErrTemplateInApprovedPayroll = apperror.New(
		apperror.CodeReferenced,
		"payment template was used by an approved payroll entry",
		http.StatusConflict,
	)
)
