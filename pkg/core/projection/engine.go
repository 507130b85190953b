// Package projection folds a normalized assumption set over the five-year
// horizon into an income statement, cash-flow waterfall and debt schedule.
//
// Project and ProjectNormalized are pure: no I/O, no shared state, safe to
// call concurrently. ProjectionEngine wraps them with validation, mode
// selection and logging for runners.
package projection

import (
	"fmt"

	"levfin_model/pkg/core/assumption"
	"levfin_model/pkg/core/logger"
)

// Project normalizes a leniently and runs the fold. It performs no range
// validation; use ProjectionEngine.Run or assumption.Validate for that.
func Project(a assumption.Assumptions) ProjectionResult {
	n, _ := assumption.Normalize(a, assumption.ModeLenient) // lenient mode has no error path
	return ProjectNormalized(n)
}

// ProjectNormalized runs the fold over an already-normalized input.
func ProjectNormalized(n assumption.Normalized) ProjectionResult {
	rows := make([]YearProjection, 0, assumption.ProjectionYears+1)
	rows = append(rows, ltmRow(n))

	currentDebt := n.Debt.Principal
	previousRevenue := n.LTMRevenue
	for i, drivers := range n.Years {
		row := projectYear(i+1, drivers, n, currentDebt, previousRevenue)
		rows = append(rows, row)

		// carry the reported figures so beginning/ending balances chain exactly
		currentDebt = row.EndingDebt
		previousRevenue = row.Revenue
	}

	var defaulted []string
	if len(n.Defaulted) > 0 {
		defaulted = append(defaulted, n.Defaulted...)
	}

	return ProjectionResult{
		Projections:     rows,
		Summary:         Summarize(n.Debt.Principal, n.LTMEbitda, rows),
		DefaultedFields: defaulted,
	}
}

func ltmRow(n assumption.Normalized) YearProjection {
	depreciation := pct(n.LTMRevenue, n.DepreciationPercent)
	leverage := 0.0
	if n.LTMEbitda > 0 {
		leverage = n.Debt.Principal / n.LTMEbitda
	}

	return YearProjection{
		Year:                     0,
		Label:                    LTMLabel,
		Revenue:                  RoundMoney(n.LTMRevenue),
		GrossEbitda:              RoundMoney(n.LTMEbitda),
		EbitdaMarginPercent:      RoundRatio(SafeDivide(n.LTMEbitda, n.LTMRevenue) * 100),
		AdjustedEbitda:           RoundMoney(n.LTMEbitda),
		DepreciationAmortization: RoundMoney(depreciation),
		Ebit:                     RoundMoney(n.LTMEbitda - depreciation),
		InterestExpense:          RoundMoney(pct(n.Debt.Principal, n.Debt.InterestRatePercent)),
		BeginningDebt:            RoundMoney(n.Debt.Principal),
		EndingDebt:               RoundMoney(n.Debt.Principal),
		LeverageRatio:            RoundRatio(leverage),
	}
}

func projectYear(year int, d assumption.YearDrivers, n assumption.Normalized, beginningDebt, previousRevenue float64) YearProjection {
	revenue := previousRevenue * (1 + d.GrowthPercent/100)

	grossEbitda := pct(revenue, d.MarginPercent)
	adjustedEbitda := grossEbitda + d.Adjustment

	depreciation := pct(revenue, n.DepreciationPercent)
	ebit := adjustedEbitda - depreciation

	// simple interest on the opening balance
	interest := pct(beginningDebt, n.Debt.InterestRatePercent)

	preTax := ebit - interest
	taxes := max(0, pct(preTax, n.TaxRatePercent))
	netIncome := preTax - taxes

	capex := pct(revenue, d.CapexPercent)

	// Amortization is a percent of the original principal, capped at the
	// remaining balance.
	mandatoryAmort := min(pct(n.Debt.Principal, n.Debt.MandatoryAmortPercent), beginningDebt)

	fcf := netIncome + depreciation - capex - mandatoryAmort
	sweep := pct(max(0, fcf), n.CashSweepPercent)
	endingDebt := max(0, beginningDebt-mandatoryAmort-sweep)

	leverage := 0.0
	if adjustedEbitda > 0 {
		leverage = endingDebt / adjustedEbitda
	}

	dscr := 0.0
	debtService := interest + mandatoryAmort
	if debtService > 0 && adjustedEbitda > 0 {
		dscr = adjustedEbitda / debtService
	}

	return YearProjection{
		Year:                     year,
		Label:                    fmt.Sprintf("Year %d", year),
		Revenue:                  RoundMoney(revenue),
		RevenueGrowthPercent:     d.GrowthPercent,
		GrossEbitda:              RoundMoney(grossEbitda),
		EbitdaMarginPercent:      d.MarginPercent,
		Adjustments:              RoundMoney(d.Adjustment),
		AdjustedEbitda:           RoundMoney(adjustedEbitda),
		DepreciationAmortization: RoundMoney(depreciation),
		Ebit:                     RoundMoney(ebit),
		InterestExpense:          RoundMoney(interest),
		PreTaxIncome:             RoundMoney(preTax),
		Taxes:                    RoundMoney(taxes),
		NetIncome:                RoundMoney(netIncome),
		DepreciationAddback:      RoundMoney(depreciation),
		Capex:                    RoundMoney(capex),
		MandatoryAmortization:    RoundMoney(mandatoryAmort),
		FreeCashFlow:             RoundMoney(fcf),
		BeginningDebt:            RoundMoney(beginningDebt),
		CashSweep:                RoundMoney(sweep),
		EndingDebt:               RoundMoney(endingDebt),
		LeverageRatio:            RoundRatio(leverage),
		DebtServiceCoverageRatio: RoundRatio(dscr),
	}
}

// ProjectionEngine is the runner-facing entry point: validate, normalize in
// the configured mode, fold, and log what was defaulted.
type ProjectionEngine struct {
	mode assumption.Mode
	log  logger.Logger
}

// NewProjectionEngine returns an engine. A nil logger discards output.
func NewProjectionEngine(mode assumption.Mode, log logger.Logger) *ProjectionEngine {
	if mode == "" {
		mode = assumption.ModeLenient
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ProjectionEngine{mode: mode, log: log}
}

// Mode reports the normalization mode.
func (e *ProjectionEngine) Mode() assumption.Mode {
	return e.mode
}

// Run validates a and produces its projection. Errors are input errors only.
func (e *ProjectionEngine) Run(a assumption.Assumptions) (ProjectionResult, error) {
	if err := assumption.Validate(a); err != nil {
		return ProjectionResult{}, fmt.Errorf("invalid assumptions: %w", err)
	}

	n, err := assumption.Normalize(a, e.mode)
	if err != nil {
		return ProjectionResult{}, fmt.Errorf("normalize assumptions: %w", err)
	}
	if len(n.Defaulted) > 0 {
		e.log.Warn("driver entries filled with fallbacks", map[string]interface{}{
			"fields": n.Defaulted,
			"mode":   string(e.mode),
		})
	}

	result := ProjectNormalized(n)
	e.log.Debug("projection complete", map[string]interface{}{
		"entry_leverage": result.Summary.EntryLeverage,
		"exit_leverage":  result.Summary.ExitLeverage,
		"paydown_pct":    result.Summary.PaydownPercent,
	})
	return result, nil
}
