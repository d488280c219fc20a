package paymenttemplate

import (
	"time"

	"go-payroll/internal/paymentfield"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentTemplate struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name        string          `gorm:"size:120;not null"`
	Description string          `gorm:"type:text"`
	Fields      []TemplateField `gorm:"foreignKey:TemplateID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (PaymentTemplate) TableName() string {
	return "payment_templates"
}

// TemplateField places a payment field at a position inside a template.
type TemplateField struct {
	TemplateID     uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	PaymentFieldID uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	Position       int                       `gorm:"not null"`
	PaymentField   paymentfield.PaymentField `gorm:"foreignKey:PaymentFieldID"`
}

func (TemplateField) TableName() string {
	return "payment_template_fields"
}
