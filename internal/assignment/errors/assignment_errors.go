package assignmenterrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrAssignmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"payment template assignment not found",
		http.StatusNotFound,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidAssignmentType = apperror.New(
		apperror.CodeInvalidInput,
		"assignment_type must be employee or site",
		http.StatusBadRequest,
	)
	ErrSubjectMismatch = apperror.New(
		apperror.CodeInvalidInput,
		"exactly one of employee_id or site_id must be set and it must match assignment_type",
		http.StatusBadRequest,
	)
	ErrInvalidSubjectID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid subject id",
		http.StatusBadRequest,
	)
	ErrInvalidTemplateID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid template id",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"dates must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrInvalidWindow = apperror.New(
		apperror.CodeInvalidInput,
		"effective_to must be after effective_from",
		http.StatusBadRequest,
	)
	ErrTemplateNotFound = apperror.New(
		apperror.CodeNotFound,
		"payment template not found",
		http.StatusNotFound,
	)
	ErrOverlap = apperror.New(
		apperror.CodeOverlap,
		"assignment window overlaps an existing assignment for the same subject",
		http.StatusConflict,
	)
	ErrReferenced = apperror.New(
		apperror.CodeReferenced,
		"assignment is referenced by approved payroll entries",
		http.StatusConflict,
	)
	ErrAmbiguousAssignment = apperror.New(
		apperror.CodeInvalidState,
		"more than one active assignment covers the date",
		http.StatusConflict,
	)
)

var ErrConcurrentWrite = apperror.New(
	apperror.CodeConflict,
	"assignment was modified concurrently, retry the request",
	http.StatusConflict,
)
