package assignment

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeEmployee = "employee"
	TypeSite     = "site"
)

type Assignment struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	AssignmentType string     `gorm:"type:varchar(10);not null"`
	EmployeeID     *uuid.UUID `gorm:"type:uuid"`
	SiteID         *uuid.UUID `gorm:"type:uuid"`
	TemplateID     uuid.UUID  `gorm:"type:uuid;not null"`
	EffectiveFrom  time.Time  `gorm:"type:date;not null"`
	EffectiveTo    *time.Time `gorm:"type:date"`
	IsActive       bool       `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Assignment) TableName() string {
	return "payment_template_assignments"
}

// SubjectID is the employee or site id, whichever the type points at.
func (a Assignment) SubjectID() uuid.UUID {
	if a.AssignmentType == TypeSite && a.SiteID != nil {
		return *a.SiteID
	}
	if a.EmployeeID != nil {
		return *a.EmployeeID
	}
	return uuid.Nil
}

func (a Assignment) Window() Window {
	return Window{From: a.EffectiveFrom, To: a.EffectiveTo}
}

// EntryRef is an approved payroll entry computed from an assignment.
type EntryRef struct {
	EntryID     uuid.UUID
	TemplateID  uuid.UUID
	PeriodStart time.Time
}

const (
	SourceEmployee = "employee"
	SourceSite     = "site"
)

// Resolution is the assignment in force for a subject on a date and the
// level it was found at.
type Resolution struct {
	Assignment Assignment `json:"assignment"`
	Source     string     `json:"source"`
}
