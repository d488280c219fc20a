package payrollerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"period_start must be before or equal period_end",
		http.StatusBadRequest,
	)
	ErrInvalidInputs = apperror.New(
		apperror.CodeInvalidInput,
		"payroll inputs cannot be negative",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll status filter",
		http.StatusBadRequest,
	)
	ErrEmptyRun = apperror.New(
		apperror.CodeInvalidInput,
		"payroll run needs at least one employee",
		http.StatusBadRequest,
	)
	ErrDuplicateRunEmployee = apperror.New(
		apperror.CodeInvalidInput,
		"employee listed more than once in payroll run",
		http.StatusBadRequest,
	)
	ErrEmployeeNotInCompany = apperror.New(
		apperror.CodeNotFound,
		"employee not found in this company",
		http.StatusNotFound,
	)
	ErrNoTemplateAssigned = apperror.New(
		apperror.CodeNotFound,
		"no payment template assigned",
		http.StatusNotFound,
	)
	ErrEntryNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll entry not found",
		http.StatusNotFound,
	)
	ErrRunNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll run not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotInRun = apperror.New(
		apperror.CodeNotFound,
		"employee is not part of this payroll run",
		http.StatusNotFound,
	)
	ErrPayslipNotGenerated = apperror.New(
		apperror.CodeNotFound,
		"payslip is not generated yet",
		http.StatusNotFound,
	)
	ErrComputation = apperror.New(
		apperror.CodeComputationFailed,
		"payroll entry could not be computed",
		http.StatusUnprocessableEntity,
	)
	ErrEntryApproved = apperror.New(
		apperror.CodeInvalidState,
		"approved payroll entry cannot be regenerated or deleted",
		http.StatusConflict,
	)
	ErrEntryAlreadyApproved = apperror.New(
		apperror.CodeInvalidState,
		"payroll entry is already approved",
		http.StatusConflict,
	)
	ErrEntryInRun = apperror.New(
		apperror.CodeInvalidState,
		"payroll entry belongs to a run and is approved with it",
		http.StatusConflict,
	)
	ErrEntryInOtherRun = apperror.New(
		apperror.CodeConflict,
		"payroll entry for this period belongs to another run",
		http.StatusConflict,
	)
	ErrRunApproved = apperror.New(
		apperror.CodeInvalidState,
		"payroll run is already approved",
		http.StatusConflict,
	)
	ErrRunHasFailures = apperror.New(
		apperror.CodeInvalidState,
		"payroll run has failed employees",
		http.StatusConflict,
	)
	ErrRunEmpty = apperror.New(
		apperror.CodeInvalidState,
		"payroll run has no entries",
		http.StatusConflict,
	)
	ErrRunIncomplete = apperror.New(
		apperror.CodeInvalidState,
		"payroll run is missing entries",
		http.StatusConflict,
	)
	ErrConcurrentWrite = apperror.New(
		apperror.CodeConflict,
		"payroll entry was modified concurrently, retry",
		http.StatusConflict,
	)
)
