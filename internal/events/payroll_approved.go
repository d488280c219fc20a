package events

import "time"

const PayrollApprovedTopic = "payroll.approved.v1"

const (
	EventPayrollRunApproved   = "payroll_run_approved"
	EventPayrollEntryApproved = "payroll_entry_approved"
)

// PayrollApprovedEvent asks for payslips of freshly approved entries.
type PayrollApprovedEvent struct {
	EventType  string    `json:"event_type"`
	CompanyID  string    `json:"company_id"`
	RunID      string    `json:"run_id,omitempty"`
	EntryIDs   []string  `json:"entry_ids"`
	ApprovedBy string    `json:"approved_by"`
	OccurredAt time.Time `json:"occurred_at"`
}
