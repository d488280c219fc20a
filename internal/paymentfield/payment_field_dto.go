package paymentfield

import "github.com/shopspring/decimal"

type CreatePaymentFieldRequest struct {
	Name                string           `json:"name" binding:"required,max=120"`
	PaymentType         string           `json:"payment_type" binding:"required,oneof=fixed variable"`
	CalculationType     string           `json:"calculation_type" binding:"required,oneof=fixed percentage_of_ctc statutory_formula"`
	Amount              *decimal.Decimal `json:"amount"`
	StatutoryFormulaRef *string          `json:"statutory_formula_ref"`
	IsDeduction         bool             `json:"is_deduction"`
}

type UpdatePaymentFieldRequest struct {
	Name                string           `json:"name" binding:"required,max=120"`
	PaymentType         string           `json:"payment_type" binding:"required,oneof=fixed variable"`
	CalculationType     string           `json:"calculation_type" binding:"required,oneof=fixed percentage_of_ctc statutory_formula"`
	Amount              *decimal.Decimal `json:"amount"`
	StatutoryFormulaRef *string          `json:"statutory_formula_ref"`
	IsDeduction         bool             `json:"is_deduction"`
}

type PaymentFieldResponse struct {
	ID                  string           `json:"id"`
	CompanyID           string           `json:"company_id"`
	Name                string           `json:"name"`
	PaymentType         string           `json:"payment_type"`
	CalculationType     string           `json:"calculation_type"`
	Amount              *decimal.Decimal `json:"amount"`
	StatutoryFormulaRef *string          `json:"statutory_formula_ref,omitempty"`
	IsDeduction         bool             `json:"is_deduction"`
	UpdatedAt           string           `json:"updated_at"`
}
