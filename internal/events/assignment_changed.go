package events

import "time"

const AssignmentChangedTopic = "payroll.assignment.changed.v1"

const (
	AssignmentActionCreated = "created"
	AssignmentActionUpdated = "updated"
	AssignmentActionDeleted = "deleted"
	AssignmentActionClosed  = "closed"
)

type AssignmentChangedEvent struct {
	EventType      string    `json:"event_type"`
	Action         string    `json:"action"`
	AssignmentID   string    `json:"assignment_id"`
	CompanyID      string    `json:"company_id"`
	AssignmentType string    `json:"assignment_type"`
	SubjectID      string    `json:"subject_id"`
	TemplateID     string    `json:"template_id"`
	EffectiveFrom  string    `json:"effective_from"`
	EffectiveTo    *string   `json:"effective_to,omitempty"`
	IsActive       bool      `json:"is_active"`
	Forced         bool      `json:"forced,omitempty"`
	ActorID        string    `json:"actor_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
