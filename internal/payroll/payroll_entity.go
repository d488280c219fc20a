package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

type PayrollEntry struct {
	ID                    uuid.UUID           `gorm:"type:uuid;primaryKey"`
	CompanyID             uuid.UUID           `gorm:"type:uuid;not null;index:idx_entry_company_status"`
	RunID                 *uuid.UUID          `gorm:"type:uuid;index"`
	EmployeeID            uuid.UUID           `gorm:"type:uuid;not null"`
	PeriodStart           time.Time           `gorm:"type:date;not null"`
	PeriodEnd             time.Time           `gorm:"type:date;not null"`
	AssignmentID          *uuid.UUID          `gorm:"type:uuid"`
	TemplateID            uuid.UUID           `gorm:"type:uuid;not null"`
	AssignmentSource      string              `gorm:"type:varchar(20);not null"`
	MonthlyCTC            decimal.NullDecimal `gorm:"column:monthly_ctc;type:numeric(14,2)"`
	Inputs                datatypes.JSON      `gorm:"type:jsonb;not null"`
	GrossEarnings         decimal.Decimal     `gorm:"type:numeric(14,2);not null"`
	TotalDeductions       decimal.Decimal     `gorm:"type:numeric(14,2);not null"`
	EmployerContributions decimal.Decimal     `gorm:"type:numeric(14,2);not null"`
	NetPay                decimal.Decimal     `gorm:"type:numeric(14,2);not null"`
	Status                string              `gorm:"type:varchar(20);not null;default:'pending';index:idx_entry_company_status"`
	Fingerprint           string              `gorm:"type:char(64);not null"`
	CreatedBy             uuid.UUID           `gorm:"type:uuid;not null"`
	ApprovedBy            *uuid.UUID          `gorm:"type:uuid"`
	ApprovedAt            *time.Time
	PayslipPath           *string
	PayslipGeneratedAt    *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time

	Components []PayrollEntryComponent `gorm:"foreignKey:EntryID"`
}

func (PayrollEntry) TableName() string {
	return "payroll_entries"
}

// PayrollEntryComponent is one computed line of an entry, in template order.
type PayrollEntryComponent struct {
	EntryID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PaymentFieldID   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID        uuid.UUID       `gorm:"type:uuid;not null"`
	Name             string          `gorm:"size:120;not null"`
	Nature           string          `gorm:"type:varchar(30);not null"`
	CalculationType  string          `gorm:"type:varchar(30);not null"`
	Position         int             `gorm:"not null"`
	CalculationValue decimal.Decimal `gorm:"type:numeric(14,2);not null"`
}

func (PayrollEntryComponent) TableName() string {
	return "payroll_entry_components"
}

type PayrollRun struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	RunNumber   string     `gorm:"size:30;not null"`
	PeriodStart time.Time  `gorm:"type:date;not null"`
	PeriodEnd   time.Time  `gorm:"type:date;not null"`
	Headcount   int        `gorm:"not null"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy  *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Failures []PayrollRunFailure `gorm:"foreignKey:RunID"`
}

func (PayrollRun) TableName() string {
	return "payroll_runs"
}

// PayrollRunFailure records why one employee of a run has no entry.
type PayrollRunFailure struct {
	RunID      uuid.UUID      `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID      `gorm:"type:uuid;not null"`
	Code       string         `gorm:"size:40;not null"`
	Message    string         `gorm:"type:text;not null"`
	Details    datatypes.JSON `gorm:"type:jsonb"`
	Inputs     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (PayrollRunFailure) TableName() string {
	return "payroll_run_failures"
}

type PayslipEmployee struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName string    `gorm:"column:full_name"`
}

func (PayslipEmployee) TableName() string {
	return "employees"
}
