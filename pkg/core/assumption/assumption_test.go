package assumption

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAssumptions() Assumptions {
	return Assumptions{
		LTMRevenue:           500_000_000,
		LTMEbitda:            125_000_000,
		RevenueGrowthPercent: []float64{5, 6, 7, 5, 4},
		EbitdaMarginPercent:  []float64{25, 26, 27, 27, 28},
		CapexPercent:         []float64{3, 3, 3, 2.5, 2.5},
		EbitdaAdjustments:    []float64{5_000_000, 3_000_000, 2_000_000, 1_000_000, 0},
		TaxRatePercent:       25,
		DepreciationPercent:  4,
		Debt: DebtTranche{
			Principal:             400_000_000,
			InterestRatePercent:   9.5,
			MandatoryAmortPercent: 1,
		},
		CashSweepPercent: 50,
	}
}

func TestNormalize_FullArrays(t *testing.T) {
	n, err := Normalize(sampleAssumptions(), ModeLenient)
	require.NoError(t, err)

	assert.Empty(t, n.Defaulted)
	assert.Equal(t, YearDrivers{GrowthPercent: 5, MarginPercent: 25, CapexPercent: 3, Adjustment: 5_000_000}, n.Years[0])
	assert.Equal(t, YearDrivers{GrowthPercent: 4, MarginPercent: 28, CapexPercent: 2.5, Adjustment: 0}, n.Years[4])
	assert.Equal(t, 400_000_000.0, n.Debt.Principal)
}

func TestNormalize_LenientFillsFallbacks(t *testing.T) {
	a := sampleAssumptions()
	a.RevenueGrowthPercent = []float64{10, 10, 10}
	a.EbitdaMarginPercent = nil
	a.CapexPercent = []float64{}
	a.EbitdaAdjustments = []float64{1, 2, 3, 4, 5, 6, 7}

	n, err := Normalize(a, ModeLenient)
	require.NoError(t, err)

	for i, y := range n.Years {
		assert.Equal(t, DefaultMarginPercent, y.MarginPercent, "margin year %d", i+1)
		assert.Equal(t, DefaultCapexPercent, y.CapexPercent, "capex year %d", i+1)
		assert.Equal(t, float64(i+1), y.Adjustment, "adjustment year %d", i+1)
	}
	assert.Equal(t, 10.0, n.Years[2].GrowthPercent)
	assert.Equal(t, DefaultGrowthPercent, n.Years[3].GrowthPercent)
	assert.Equal(t, DefaultGrowthPercent, n.Years[4].GrowthPercent)

	assert.Contains(t, n.Defaulted, "revenueGrowthPercent[3]")
	assert.Contains(t, n.Defaulted, "revenueGrowthPercent[4]")
	assert.Contains(t, n.Defaulted, "ebitdaMarginPercent[0]")
	assert.Len(t, n.Defaulted, 2+5+5)
}

func TestNormalize_StrictRejectsShortArrays(t *testing.T) {
	a := sampleAssumptions()
	a.CapexPercent = []float64{3, 3, 3}

	_, err := Normalize(a, ModeStrict)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArrayLength))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "capexPercent", verr.Field)
}

func TestNormalize_StrictAcceptsExactArrays(t *testing.T) {
	_, err := Normalize(sampleAssumptions(), ModeStrict)
	assert.NoError(t, err)
}

func TestNormalize_DoesNotAliasInput(t *testing.T) {
	a := sampleAssumptions()
	n, err := Normalize(a, ModeLenient)
	require.NoError(t, err)

	a.RevenueGrowthPercent[0] = 99
	assert.Equal(t, 5.0, n.Years[0].GrowthPercent)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeLenient, m)

	m, err = ParseMode(" Strict ")
	require.NoError(t, err)
	assert.Equal(t, ModeStrict, m)

	_, err = ParseMode("loose")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Assumptions)
		field  string
	}{
		{"negative revenue", func(a *Assumptions) { a.LTMRevenue = -1 }, "ltmRevenue"},
		{"negative principal", func(a *Assumptions) { a.Debt.Principal = -1 }, "debt.principal"},
		{"negative rate", func(a *Assumptions) { a.Debt.InterestRatePercent = -0.5 }, "debt.interestRatePercent"},
		{"negative amort", func(a *Assumptions) { a.Debt.MandatoryAmortPercent = -1 }, "debt.mandatoryAmortPercent"},
		{"sweep above 100", func(a *Assumptions) { a.CashSweepPercent = 101 }, "cashSweepPercent"},
		{"sweep below 0", func(a *Assumptions) { a.CashSweepPercent = -1 }, "cashSweepPercent"},
		{"NaN ebitda", func(a *Assumptions) { a.LTMEbitda = math.NaN() }, "ltmEbitda"},
		{"Inf driver", func(a *Assumptions) { a.CapexPercent[2] = math.Inf(1) }, "capexPercent[2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := sampleAssumptions()
			tt.mutate(&a)

			err := Validate(a)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidValue))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidate_AcceptsDegenerateNumerics(t *testing.T) {
	a := sampleAssumptions()
	a.LTMEbitda = -10_000_000
	a.Debt.Principal = 0
	a.CashSweepPercent = 100
	assert.NoError(t, Validate(a))
}

func TestClone_IsDeep(t *testing.T) {
	a := sampleAssumptions()
	b := a.Clone()
	b.EbitdaMarginPercent[0] = 1
	assert.Equal(t, 25.0, a.EbitdaMarginPercent[0])
}
