package assumption

import (
	"errors"
	"fmt"
	"math"
)

// Validate checks value ranges. Numerically degenerate but finite inputs
// (zero or negative EBITDA, zero principal) are accepted; the engine guards
// those. All violations are returned joined.
func Validate(a Assumptions) error {
	var errs []error

	scalars := []struct {
		field string
		value float64
	}{
		{"ltmRevenue", a.LTMRevenue},
		{"ltmEbitda", a.LTMEbitda},
		{"taxRatePercent", a.TaxRatePercent},
		{"depreciationPercent", a.DepreciationPercent},
		{"debt.principal", a.Debt.Principal},
		{"debt.interestRatePercent", a.Debt.InterestRatePercent},
		{"debt.mandatoryAmortPercent", a.Debt.MandatoryAmortPercent},
		{"cashSweepPercent", a.CashSweepPercent},
	}
	for _, s := range scalars {
		if !finite(s.value) {
			errs = append(errs, invalid(s.field, "must be a finite number"))
		}
	}

	arrays := []struct {
		field  string
		values []float64
	}{
		{"revenueGrowthPercent", a.RevenueGrowthPercent},
		{"ebitdaMarginPercent", a.EbitdaMarginPercent},
		{"capexPercent", a.CapexPercent},
		{"ebitdaAdjustments", a.EbitdaAdjustments},
	}
	for _, arr := range arrays {
		for i, v := range arr.values {
			if !finite(v) {
				errs = append(errs, invalid(fmt.Sprintf("%s[%d]", arr.field, i), "must be a finite number"))
			}
		}
	}

	if a.LTMRevenue < 0 {
		errs = append(errs, invalid("ltmRevenue", "must not be negative"))
	}
	if a.Debt.Principal < 0 {
		errs = append(errs, invalid("debt.principal", "must not be negative"))
	}
	if a.Debt.InterestRatePercent < 0 {
		errs = append(errs, invalid("debt.interestRatePercent", "must not be negative"))
	}
	if a.Debt.MandatoryAmortPercent < 0 {
		errs = append(errs, invalid("debt.mandatoryAmortPercent", "must not be negative"))
	}
	if a.CashSweepPercent < 0 || a.CashSweepPercent > 100 {
		errs = append(errs, invalid("cashSweepPercent", "must be between 0 and 100"))
	}

	return errors.Join(errs...)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
