package payroll

import (
	"go-payroll/internal/statutory"

	"github.com/shopspring/decimal"
)

// EntryInputs are the per-employee, per-period values the builder evaluates
// a template against. They are stored with the entry as a snapshot.
type EntryInputs struct {
	MonthlyCTC *decimal.Decimal `json:"monthly_ctc,omitempty"`
	// Overrides holds per-period amounts for variable fields, keyed by
	// payment field id.
	Overrides     map[string]decimal.Decimal `json:"overrides,omitempty"`
	PresentDays   *int                       `json:"present_days,omitempty"`
	Registrations statutory.Registrations    `json:"registrations"`
}

type BuildEntryRequest struct {
	EmployeeID  string      `json:"employee_id" binding:"required,uuid"`
	PeriodStart string      `json:"period_start" binding:"required,isodate"`
	PeriodEnd   string      `json:"period_end" binding:"required,isodate"`
	Inputs      EntryInputs `json:"inputs"`
}

type EntryFilter struct {
	RunID      string `form:"run_id" binding:"omitempty,uuid"`
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Status     string `form:"status"`
}

type RunItemRequest struct {
	EmployeeID string      `json:"employee_id" binding:"required,uuid"`
	Inputs     EntryInputs `json:"inputs"`
}

type CreateRunRequest struct {
	PeriodStart string           `json:"period_start" binding:"required,isodate"`
	PeriodEnd   string           `json:"period_end" binding:"required,isodate"`
	Items       []RunItemRequest `json:"items" binding:"required,min=1,dive"`
}

type RebuildRunEntryRequest struct {
	EmployeeID string      `json:"employee_id" binding:"required,uuid"`
	Inputs     EntryInputs `json:"inputs"`
}

type ComponentResponse struct {
	PaymentFieldID   string `json:"payment_field_id"`
	Name             string `json:"name"`
	Nature           string `json:"nature"`
	CalculationType  string `json:"calculation_type"`
	Position         int    `json:"position"`
	CalculationValue string `json:"calculation_value"`
}

type EntryResponse struct {
	ID                    string              `json:"id"`
	CompanyID             string              `json:"company_id"`
	RunID                 *string             `json:"run_id,omitempty"`
	EmployeeID            string              `json:"employee_id"`
	PeriodStart           string              `json:"period_start"`
	PeriodEnd             string              `json:"period_end"`
	AssignmentID          *string             `json:"assignment_id,omitempty"`
	TemplateID            string              `json:"template_id"`
	AssignmentSource      string              `json:"assignment_source"`
	GrossEarnings         string              `json:"gross_earnings"`
	TotalDeductions       string              `json:"total_deductions"`
	EmployerContributions string              `json:"employer_contributions"`
	NetPay                string              `json:"net_pay"`
	Status                string              `json:"status"`
	Fingerprint           string              `json:"fingerprint"`
	CreatedBy             string              `json:"created_by"`
	ApprovedBy            *string             `json:"approved_by,omitempty"`
	ApprovedAt            *string             `json:"approved_at,omitempty"`
	PayslipAvailable      bool                `json:"payslip_available"`
	Components            []ComponentResponse `json:"components"`
}

type FailureResponse struct {
	EmployeeID string `json:"employee_id"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

type RunResponse struct {
	ID          string            `json:"id"`
	CompanyID   string            `json:"company_id"`
	RunNumber   string            `json:"run_number"`
	PeriodStart string            `json:"period_start"`
	PeriodEnd   string            `json:"period_end"`
	Headcount   int               `json:"headcount"`
	Status      string            `json:"status"`
	CreatedBy   string            `json:"created_by"`
	ApprovedBy  *string           `json:"approved_by,omitempty"`
	ApprovedAt  *string           `json:"approved_at,omitempty"`
	Failures    []FailureResponse `json:"failures"`
}

type RunEntrySummary struct {
	EmployeeID string `json:"employee_id"`
	EntryID    string `json:"entry_id"`
	NetPay     string `json:"net_pay"`
}

// RunResultResponse reports what a run build produced per employee.
type RunResultResponse struct {
	Run       RunResponse       `json:"run"`
	Succeeded []RunEntrySummary `json:"succeeded"`
	Failed    []FailureResponse `json:"failed"`
}
