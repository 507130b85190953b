package projection

import (
	"fmt"
	"math"

	"levfin_model/pkg/core/assumption"
)

// Violation is one broken model invariant.
type Violation struct {
	Year   int    `json:"year"`
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("year %d: %s (%s)", v.Year, v.Rule, v.Detail)
}

// CheckInvariants audits a result: row count, debt carry-forward,
// non-negative balances and ratios, and finite numbers everywhere.
func CheckInvariants(r ProjectionResult) []Violation {
	var out []Violation

	if want := assumption.ProjectionYears + 1; len(r.Projections) != want {
		out = append(out, Violation{Rule: "row-count", Detail: fmt.Sprintf("expected %d rows, got %d", want, len(r.Projections))})
	}

	for i, row := range r.Projections {
		if row.Year != i {
			out = append(out, Violation{Year: i, Rule: "year-order", Detail: fmt.Sprintf("row %d labelled year %d", i, row.Year)})
		}
		if row.EndingDebt < 0 {
			out = append(out, Violation{Year: row.Year, Rule: "ending-debt-non-negative", Detail: fmt.Sprint(row.EndingDebt)})
		}
		if row.LeverageRatio < 0 {
			out = append(out, Violation{Year: row.Year, Rule: "leverage-non-negative", Detail: fmt.Sprint(row.LeverageRatio)})
		}
		if row.DebtServiceCoverageRatio < 0 {
			out = append(out, Violation{Year: row.Year, Rule: "dscr-non-negative", Detail: fmt.Sprint(row.DebtServiceCoverageRatio)})
		}
		if field, ok := firstNonFinite(row); ok {
			out = append(out, Violation{Year: row.Year, Rule: "finite", Detail: field})
		}
		if i >= 2 && r.Projections[i-1].EndingDebt != row.BeginningDebt {
			out = append(out, Violation{
				Year:   row.Year,
				Rule:   "debt-carry-forward",
				Detail: fmt.Sprintf("prior ending %.0f != beginning %.0f", r.Projections[i-1].EndingDebt, row.BeginningDebt),
			})
		}
	}

	if len(r.Projections) > 0 {
		ltm := r.Projections[0]
		if ltm.Capex != 0 || ltm.MandatoryAmortization != 0 || ltm.CashSweep != 0 || ltm.FreeCashFlow != 0 || ltm.DebtServiceCoverageRatio != 0 {
			out = append(out, Violation{Year: 0, Rule: "ltm-flows-zero", Detail: "LTM row carries cash-flow figures"})
		}
	}

	return out
}

func firstNonFinite(row YearProjection) (string, bool) {
	fields := []struct {
		name string
		v    float64
	}{
		{"revenue", row.Revenue},
		{"adjustedEbitda", row.AdjustedEbitda},
		{"netIncome", row.NetIncome},
		{"freeCashFlow", row.FreeCashFlow},
		{"endingDebt", row.EndingDebt},
		{"leverageRatio", row.LeverageRatio},
		{"debtServiceCoverageRatio", row.DebtServiceCoverageRatio},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return f.name, true
		}
	}
	return "", false
}
