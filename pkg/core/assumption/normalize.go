package assumption

import (
	"fmt"
	"strings"
)

// Mode selects how Normalize treats driver arrays that are not exactly
// ProjectionYears long.
type Mode string

const (
	// ModeLenient fills missing entries with the Default* fallbacks and
	// drops entries past the horizon. It never returns an error.
	ModeLenient Mode = "lenient"
	// ModeStrict rejects any driver array whose length is not ProjectionYears.
	ModeStrict Mode = "strict"
)

// ParseMode maps a config string to a Mode. Empty means lenient.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLenient:
		return ModeLenient, nil
	case ModeStrict:
		return ModeStrict, nil
	}
	return "", fmt.Errorf("unknown normalization mode %q", s)
}

type driverSeries struct {
	field    string
	values   []float64
	fallback float64
	set      func(d *YearDrivers, v float64)
}

// Normalize expands a into exactly ProjectionYears per-year drivers.
// Scalars are copied unchanged; Validate is the place for range checks.
func Normalize(a Assumptions, mode Mode) (Normalized, error) {
	n := Normalized{
		LTMRevenue:          a.LTMRevenue,
		LTMEbitda:           a.LTMEbitda,
		TaxRatePercent:      a.TaxRatePercent,
		DepreciationPercent: a.DepreciationPercent,
		Debt:                a.Debt,
		CashSweepPercent:    a.CashSweepPercent,
	}

	series := []driverSeries{
		{"revenueGrowthPercent", a.RevenueGrowthPercent, DefaultGrowthPercent, func(d *YearDrivers, v float64) { d.GrowthPercent = v }},
		{"ebitdaMarginPercent", a.EbitdaMarginPercent, DefaultMarginPercent, func(d *YearDrivers, v float64) { d.MarginPercent = v }},
		{"capexPercent", a.CapexPercent, DefaultCapexPercent, func(d *YearDrivers, v float64) { d.CapexPercent = v }},
		{"ebitdaAdjustments", a.EbitdaAdjustments, DefaultAdjustment, func(d *YearDrivers, v float64) { d.Adjustment = v }},
	}

	for _, s := range series {
		if mode == ModeStrict && len(s.values) != ProjectionYears {
			return Normalized{}, &ValidationError{
				Field:  s.field,
				Reason: fmt.Sprintf("expected %d entries, got %d", ProjectionYears, len(s.values)),
				Err:    ErrArrayLength,
			}
		}
		for i := 0; i < ProjectionYears; i++ {
			v := s.fallback
			if i < len(s.values) {
				v = s.values[i]
			} else {
				n.Defaulted = append(n.Defaulted, fmt.Sprintf("%s[%d]", s.field, i))
			}
			s.set(&n.Years[i], v)
		}
	}

	return n, nil
}
