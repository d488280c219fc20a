package paymenttemplate

import "go-payroll/internal/paymentfield"

type CreatePaymentTemplateRequest struct {
	Name          string   `json:"name" binding:"required,max=120"`
	Description   string   `json:"description" binding:"max=500"`
	PaymentFields []string `json:"payment_field_ids" binding:"required,min=1,dive,uuid"`
}

type UpdatePaymentTemplateRequest struct {
	Name          string   `json:"name" binding:"required,max=120"`
	Description   string   `json:"description" binding:"max=500"`
	PaymentFields []string `json:"payment_field_ids" binding:"required,min=1,dive,uuid"`
}

type TemplateFieldResponse struct {
	Position int                               `json:"position"`
	Field    paymentfield.PaymentFieldResponse `json:"field"`
}

type PaymentTemplateResponse struct {
	ID          string                  `json:"id"`
	CompanyID   string                  `json:"company_id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Fields      []TemplateFieldResponse `json:"fields"`
}
