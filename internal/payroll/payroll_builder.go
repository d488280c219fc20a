package payroll

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go-payroll/internal/paymentfield"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/dateutil"
	"go-payroll/internal/statutory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Computation is the evaluated result of a template for one employee and
// period.
type Computation struct {
	Components            []PayrollEntryComponent
	GrossEarnings         decimal.Decimal
	TotalDeductions       decimal.Decimal
	EmployerContributions decimal.Decimal
	NetPay                decimal.Decimal
}

// Evaluator turns template fields and inputs into components. It is pure:
// the same fields, inputs and period always produce the same computation.
type Evaluator struct {
	calc statutory.Calculator
}

func NewEvaluator(calc statutory.Calculator) *Evaluator {
	return &Evaluator{calc: calc}
}

// Evaluate runs two passes in template order. Non-statutory fields are
// computed first so statutory formulas see the statutory wage, the sum of
// the non-statutory earnings.
func (e *Evaluator) Evaluate(fields []paymentfield.PaymentField, inputs EntryInputs, periodStart time.Time) (Computation, error) {
	if err := validateInputs(inputs); err != nil {
		return Computation{}, err
	}

	components := make([]PayrollEntryComponent, len(fields))
	wage := decimal.Zero

	for i, f := range fields {
		if f.CalculationType == paymentfield.CalculationStatutoryFormula {
			continue
		}
		value, err := evaluateField(f, inputs)
		if err != nil {
			return Computation{}, err
		}
		nature := string(statutory.NatureEarning)
		if f.IsDeduction {
			nature = string(statutory.NatureDeduction)
		} else {
			wage = wage.Add(value)
		}
		components[i] = newComponent(f, i, nature, value)
	}

	for i, f := range fields {
		if f.CalculationType != paymentfield.CalculationStatutoryFormula {
			continue
		}
		if e.calc == nil || f.StatutoryFormulaRef == nil {
			return Computation{}, computationError(f, "statutory formula is not available")
		}

		in := statutory.Input{
			StatutoryWage: wage,
			Registrations: inputs.Registrations,
			PayMonth:      periodStart.Month(),
		}
		if inputs.MonthlyCTC != nil {
			in.MonthlyCTC = *inputs.MonthlyCTC
		}

		res, err := e.calc.Calculate(*f.StatutoryFormulaRef, in)
		if err != nil {
			return Computation{}, computationError(f, err.Error())
		}
		components[i] = newComponent(f, i, string(res.Nature), res.Amount.Round(2))
	}

	return summarize(components), nil
}

func evaluateField(f paymentfield.PaymentField, inputs EntryInputs) (decimal.Decimal, error) {
	switch f.CalculationType {
	case paymentfield.CalculationFixed:
		if f.PaymentType == paymentfield.PaymentTypeVariable {
			if v, ok := inputs.Overrides[f.ID.String()]; ok {
				return v.Round(2), nil
			}
		}
		if !f.Amount.Valid {
			return decimal.Zero, computationError(f, "amount is missing")
		}
		return f.Amount.Decimal.Round(2), nil

	case paymentfield.CalculationPercentageOfCTC:
		if inputs.MonthlyCTC == nil {
			return decimal.Zero, computationError(f, "monthly_ctc is required for percentage_of_ctc fields")
		}
		if !f.Amount.Valid {
			return decimal.Zero, computationError(f, "percentage is missing")
		}
		return inputs.MonthlyCTC.Mul(f.Amount.Decimal).Div(hundred).Round(2), nil
	}

	return decimal.Zero, computationError(f, fmt.Sprintf("unsupported calculation type %q", f.CalculationType))
}

func validateInputs(inputs EntryInputs) error {
	if inputs.MonthlyCTC != nil && inputs.MonthlyCTC.IsNegative() {
		return payrollerrors.ErrInvalidInputs
	}
	if inputs.PresentDays != nil && *inputs.PresentDays < 0 {
		return payrollerrors.ErrInvalidInputs
	}
	for _, v := range inputs.Overrides {
		if v.IsNegative() {
			return payrollerrors.ErrInvalidInputs
		}
	}
	return nil
}

func newComponent(f paymentfield.PaymentField, i int, nature string, value decimal.Decimal) PayrollEntryComponent {
	return PayrollEntryComponent{
		PaymentFieldID:   f.ID,
		CompanyID:        f.CompanyID,
		Name:             f.Name,
		Nature:           nature,
		CalculationType:  f.CalculationType,
		Position:         i + 1,
		CalculationValue: value,
	}
}

func summarize(components []PayrollEntryComponent) Computation {
	out := Computation{
		Components:            components,
		GrossEarnings:         decimal.Zero,
		TotalDeductions:       decimal.Zero,
		EmployerContributions: decimal.Zero,
	}
	for _, c := range components {
		switch statutory.Nature(c.Nature) {
		case statutory.NatureEarning:
			out.GrossEarnings = out.GrossEarnings.Add(c.CalculationValue)
		case statutory.NatureDeduction:
			out.TotalDeductions = out.TotalDeductions.Add(c.CalculationValue)
		case statutory.NatureEmployerContribution:
			out.EmployerContributions = out.EmployerContributions.Add(c.CalculationValue)
		}
	}
	out.NetPay = out.GrossEarnings.Sub(out.TotalDeductions)
	return out
}

func computationError(f paymentfield.PaymentField, reason string) error {
	return payrollerrors.ErrComputation.WithDetails(map[string]any{
		"payment_field_id": f.ID.String(),
		"field":            f.Name,
		"reason":           reason,
	})
}

type fingerprintComponent struct {
	PaymentFieldID string `json:"payment_field_id"`
	Nature         string `json:"nature"`
	Value          string `json:"value"`
}

type fingerprintDoc struct {
	EmployeeID  string                 `json:"employee_id"`
	PeriodStart string                 `json:"period_start"`
	PeriodEnd   string                 `json:"period_end"`
	TemplateID  string                 `json:"template_id"`
	Inputs      EntryInputs            `json:"inputs"`
	Components  []fingerprintComponent `json:"components"`
	NetPay      string                 `json:"net_pay"`
}

// Fingerprint hashes everything that determines an entry's content.
// Rebuilding with the same inputs yields the same fingerprint.
func Fingerprint(employeeID, templateID uuid.UUID, periodStart, periodEnd time.Time, inputs EntryInputs, c Computation) (string, error) {
	doc := fingerprintDoc{
		EmployeeID:  employeeID.String(),
		PeriodStart: dateutil.Format(periodStart),
		PeriodEnd:   dateutil.Format(periodEnd),
		TemplateID:  templateID.String(),
		Inputs:      inputs,
		Components:  make([]fingerprintComponent, len(c.Components)),
		NetPay:      c.NetPay.StringFixed(2),
	}
	for i, comp := range c.Components {
		doc.Components[i] = fingerprintComponent{
			PaymentFieldID: comp.PaymentFieldID.String(),
			Nature:         comp.Nature,
			Value:          comp.CalculationValue.StringFixed(2),
		}
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}
