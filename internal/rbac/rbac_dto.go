package rbac

import "go-payroll/internal/domain"

type (
	EnforceRequest  = domain.EnforceRequest
	EnforceResponse = domain.EnforceResponse
)

// Resources and actions guarded by the payroll API.
const (
	ResourcePaymentField    = "payment_field"
	ResourcePaymentTemplate = "payment_template"
	ResourceAssignment      = "assignment"
	ResourcePayroll         = "payroll"

	ActionRead    = "read"
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionApprove = "approve"
)
