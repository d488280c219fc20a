package statutory_test

import (
	"testing"
	"time"

	"go-payroll/internal/config"
	"go-payroll/internal/statutory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestRuleCalculator_Calculate(t *testing.T) {
	calc := statutory.NewCalculator(statutory.DefaultRules())
	registered := statutory.Registrations{EPF: true, ESI: true}

	tests := []struct {
		name       string
		ref        string
		in         statutory.Input
		wantAmount string
		wantNature statutory.Nature
	}{
		{
			name:       "epf capped at wage ceiling",
			ref:        statutory.RefEPF,
			in:         statutory.Input{StatutoryWage: d("50000"), Registrations: registered, PayMonth: time.March},
			wantAmount: "1800",
			wantNature: statutory.NatureDeduction,
		},
		{
			name:       "epf below ceiling",
			ref:        statutory.RefEPF,
			in:         statutory.Input{StatutoryWage: d("10000"), Registrations: registered, PayMonth: time.March},
			wantAmount: "1200",
			wantNature: statutory.NatureDeduction,
		},
		{
			name:       "epf not registered",
			ref:        statutory.RefEPF,
			in:         statutory.Input{StatutoryWage: d("10000"), PayMonth: time.March},
			wantAmount: "0",
			wantNature: statutory.NatureDeduction,
		},
		{
			name:       "esi within limit rounds half up",
			ref:        statutory.RefESI,
			in:         statutory.Input{StatutoryWage: d("15001"), Registrations: registered, PayMonth: time.March},
			wantAmount: "112.51",
			wantNature: statutory.NatureDeduction,
		},
		{
			name:       "esi above limit",
			ref:        statutory.RefESI,
			in:         statutory.Input{StatutoryWage: d("21000.01"), Registrations: registered, PayMonth: time.March},
			wantAmount: "0",
			wantNature: statutory.NatureDeduction,
		},
		{
			name:       "pt lowest slab",
			ref:        statutory.RefPT,
			in:         statutory.Input{StatutoryWage: d("7500"), PayMonth: time.March},
			wantAmount: "0",
			wantNature: statutory.NatureDeduction,
		},
		{
			name:       "pt middle slab",
			ref:        statutory.RefPT,
			in:         statutory.Input{StatutoryWage: d("9000"), PayMonth: time.March},
			wantAmount: "175",
			wantNature: statutory.NatureDeduction,
		},
		{
			name:       "pt top slab in february",
			ref:        statutory.RefPT,
			in:         statutory.Input{StatutoryWage: d("40000"), PayMonth: time.February},
			wantAmount: "300",
			wantNature: statutory.NatureDeduction,
		},
		{
			name:       "lwf outside contribution month",
			ref:        statutory.RefLWF,
			in:         statutory.Input{StatutoryWage: d("40000"), PayMonth: time.March},
			wantAmount: "0",
			wantNature: statutory.NatureDeduction,
		},
		{
			name:       "lwf in june",
			ref:        statutory.RefLWF,
			in:         statutory.Input{StatutoryWage: d("40000"), PayMonth: time.June},
			wantAmount: "25",
			wantNature: statutory.NatureDeduction,
		},
		{
			name:       "gratuity is an employer contribution",
			ref:        statutory.RefGratuity,
			in:         statutory.Input{StatutoryWage: d("20000"), PayMonth: time.March},
			wantAmount: "962",
			wantNature: statutory.NatureEmployerContribution,
		},
		{
			name:       "bonus capped",
			ref:        statutory.RefBonus,
			in:         statutory.Input{StatutoryWage: d("20000"), PayMonth: time.March},
			wantAmount: "583.1",
			wantNature: statutory.NatureEarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := calc.Calculate(tt.ref, tt.in)

			require.NoError(t, err)
			assert.True(t, d(tt.wantAmount).Equal(res.Amount), "got %s", res.Amount)
			assert.Equal(t, tt.wantNature, res.Nature)
		})
	}
}

func TestRuleCalculator_UnknownFormula(t *testing.T) {
	calc := statutory.NewCalculator(statutory.DefaultRules())

	_, err := calc.Calculate("tds", statutory.Input{})

	assert.ErrorIs(t, err, statutory.ErrUnknownFormula)
}

func TestRulesFromConfig(t *testing.T) {
	rules := statutory.RulesFromConfig(config.StatutoryConfig{EPFRate: d("10")})

	assert.True(t, d("10").Equal(rules.EPFRate))
	assert.True(t, d("15000").Equal(rules.EPFWageCeiling))
}
