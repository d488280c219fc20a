package events

import "time"

// EmployeeLifecycleTopic is published by the HR service that owns employees.
const EmployeeLifecycleTopic = "hr.employee.lifecycle.v1"

const (
	EventEmployeeTerminated = "employee_terminated"
	// EventEmployeeTransferred means the employee's home site changed.
	EventEmployeeTransferred = "employee_transferred"
)

type EmployeeLifecycleEvent struct {
	EventType       string    `json:"event_type"`
	EmployeeID      string    `json:"employee_id"`
	CompanyID       string    `json:"company_id"`
	TerminationDate string    `json:"termination_date,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
