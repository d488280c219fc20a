// Package statutory computes government-mandated payroll components (EPF,
// ESI, professional tax, labour welfare fund, gratuity, statutory bonus).
//
// The payroll builder only depends on Calculator; the rule values below are
// configuration sourced from the regulations and can be overridden per
// deployment.
package statutory

import (
	"errors"
	"fmt"
	"time"

	"go-payroll/internal/config"

	"github.com/shopspring/decimal"
)

const (
	RefEPF      = "epf"
	RefESI      = "esi"
	RefPT       = "pt"
	RefLWF      = "lwf"
	RefGratuity = "gratuity"
	RefBonus    = "bonus"
)

var knownRefs = map[string]struct{}{
	RefEPF:      {},
	RefESI:      {},
	RefPT:       {},
	RefLWF:      {},
	RefGratuity: {},
	RefBonus:    {},
}

func IsKnown(ref string) bool {
	_, ok := knownRefs[ref]
	return ok
}

type Nature string

const (
	NatureEarning              Nature = "earning"
	NatureDeduction            Nature = "deduction"
	NatureEmployerContribution Nature = "employer_contribution"
)

var ErrUnknownFormula = errors.New("unknown statutory formula")

type Registrations struct {
	EPF bool `json:"epf"`
	ESI bool `json:"esi"`
}

type Input struct {
	MonthlyCTC decimal.Decimal
	// StatutoryWage is the sum of the non-statutory earnings of the entry.
	StatutoryWage decimal.Decimal
	Registrations Registrations
	PayMonth      time.Month
}

type Result struct {
	Amount decimal.Decimal
	Nature Nature
}

//go:generate mockgen -source=statutory.go -destination=mock/statutory_mock.go -package=mock
type Calculator interface {
	Calculate(ref string, in Input) (Result, error)
}

// PTSlab charges Amount when the wage is at most UpTo. The last slab has a
// nil UpTo and catches everything above.
type PTSlab struct {
	UpTo   *decimal.Decimal
	Amount decimal.Decimal
}

type Rules struct {
	EPFRate          decimal.Decimal
	EPFWageCeiling   decimal.Decimal
	ESIRate          decimal.Decimal
	ESIGrossLimit    decimal.Decimal
	PTSlabs          []PTSlab
	PTFebruaryAmount decimal.Decimal
	LWFAmount        decimal.Decimal
	LWFMonths        []time.Month
	GratuityRate     decimal.Decimal
	BonusRate        decimal.Decimal
	BonusWageCeiling decimal.Decimal
}

func DefaultRules() Rules {
	slab := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}

	return Rules{
		EPFRate:        decimal.NewFromInt(12),
		EPFWageCeiling: decimal.NewFromInt(15000),
		ESIRate:        decimal.RequireFromString("0.75"),
		ESIGrossLimit:  decimal.NewFromInt(21000),
		PTSlabs: []PTSlab{
			{UpTo: slab(7500), Amount: decimal.Zero},
			{UpTo: slab(10000), Amount: decimal.NewFromInt(175)},
			{UpTo: nil, Amount: decimal.NewFromInt(200)},
		},
		PTFebruaryAmount: decimal.NewFromInt(300),
		LWFAmount:        decimal.NewFromInt(25),
		LWFMonths:        []time.Month{time.June, time.December},
		GratuityRate:     decimal.RequireFromString("4.81"),
		BonusRate:        decimal.RequireFromString("8.33"),
		BonusWageCeiling: decimal.NewFromInt(7000),
	}
}

// RulesFromConfig applies the non-zero overrides from configuration on top
// of DefaultRules.
func RulesFromConfig(cfg config.StatutoryConfig) Rules {
	r := DefaultRules()
	override := func(dst *decimal.Decimal, v decimal.Decimal) {
		if !v.IsZero() {
			*dst = v
		}
	}
	override(&r.EPFRate, cfg.EPFRate)
	override(&r.EPFWageCeiling, cfg.EPFWageCeiling)
	override(&r.ESIRate, cfg.ESIRate)
	override(&r.ESIGrossLimit, cfg.ESIGrossLimit)
	override(&r.LWFAmount, cfg.LWFAmount)
	override(&r.GratuityRate, cfg.GratuityRate)
	override(&r.BonusRate, cfg.BonusRate)
	override(&r.BonusWageCeiling, cfg.BonusWageCeiling)
	return r
}

type RuleCalculator struct {
	rules Rules
}

func NewCalculator(rules Rules) *RuleCalculator {
	return &RuleCalculator{rules: rules}
}

var hundred = decimal.NewFromInt(100)

func percentOf(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(hundred).Round(2)
}

func (c *RuleCalculator) Calculate(ref string, in Input) (Result, error) {
	if in.StatutoryWage.IsNegative() {
		return Result{}, fmt.Errorf("statutory wage cannot be negative: %s", in.StatutoryWage)
	}
	wage := in.StatutoryWage

	switch ref {
	case RefEPF:
		if !in.Registrations.EPF {
			return Result{Amount: decimal.Zero, Nature: NatureDeduction}, nil
		}
		base := decimal.Min(wage, c.rules.EPFWageCeiling)
		return Result{Amount: percentOf(base, c.rules.EPFRate), Nature: NatureDeduction}, nil

	case RefESI:
		if !in.Registrations.ESI || wage.GreaterThan(c.rules.ESIGrossLimit) {
			return Result{Amount: decimal.Zero, Nature: NatureDeduction}, nil
		}
		return Result{Amount: percentOf(wage, c.rules.ESIRate), Nature: NatureDeduction}, nil

	case RefPT:
		return Result{Amount: c.professionalTax(wage, in.PayMonth), Nature: NatureDeduction}, nil

	case RefLWF:
		for _, m := range c.rules.LWFMonths {
			if m == in.PayMonth {
				return Result{Amount: c.rules.LWFAmount.Round(2), Nature: NatureDeduction}, nil
			}
		}
		return Result{Amount: decimal.Zero, Nature: NatureDeduction}, nil

	case RefGratuity:
		return Result{Amount: percentOf(wage, c.rules.GratuityRate), Nature: NatureEmployerContribution}, nil

	case RefBonus:
		base := decimal.Min(wage, c.rules.BonusWageCeiling)
		return Result{Amount: percentOf(base, c.rules.BonusRate), Nature: NatureEarning}, nil
	}

	return Result{}, fmt.Errorf("%w: %q", ErrUnknownFormula, ref)
}

func (c *RuleCalculator) professionalTax(wage decimal.Decimal, month time.Month) decimal.Decimal {
	for i, slab := range c.rules.PTSlabs {
		if slab.UpTo != nil && wage.GreaterThan(*slab.UpTo) {
			continue
		}
		// The top slab is charged extra in February to reach the annual cap.
		if i == len(c.rules.PTSlabs)-1 && month == time.February && !c.rules.PTFebruaryAmount.IsZero() {
			return c.rules.PTFebruaryAmount.Round(2)
		}
		return slab.Amount.Round(2)
	}
	return decimal.Zero
}
