package projection

// LTMLabel marks the year-0 baseline row.
const LTMLabel = "LTM"

// YearProjection is one period of the model. Monetary fields are whole
// currency units; ratios carry two decimals.
type YearProjection struct {
	Year  int    `json:"year"`
	Label string `json:"label"`

	// Income statement
	Revenue                  float64 `json:"revenue"`
	RevenueGrowthPercent     float64 `json:"revenueGrowthPercent"`
	GrossEbitda              float64 `json:"grossEbitda"`
	EbitdaMarginPercent      float64 `json:"ebitdaMarginPercent"`
	Adjustments              float64 `json:"adjustments"`
	AdjustedEbitda           float64 `json:"adjustedEbitda"`
	DepreciationAmortization float64 `json:"depreciationAmortization"`
	Ebit                     float64 `json:"ebit"`
	InterestExpense          float64 `json:"interestExpense"`
	PreTaxIncome             float64 `json:"preTaxIncome"`
	Taxes                    float64 `json:"taxes"`
	NetIncome                float64 `json:"netIncome"`

	// Cash flow waterfall
	DepreciationAddback   float64 `json:"depreciationAddback"`
	Capex                 float64 `json:"capex"`
	MandatoryAmortization float64 `json:"mandatoryAmortization"`
	FreeCashFlow          float64 `json:"freeCashFlow"` // before sweep; may be negative

	// Debt schedule
	BeginningDebt float64 `json:"beginningDebt"`
	CashSweep     float64 `json:"cashSweep"`
	EndingDebt    float64 `json:"endingDebt"`

	// Credit ratios
	LeverageRatio            float64 `json:"leverageRatio"`
	DebtServiceCoverageRatio float64 `json:"debtServiceCoverageRatio"`
}

// Summary reduces the projected years to headline credit statistics.
type Summary struct {
	TotalPaydown   float64 `json:"totalPaydown"`
	PaydownPercent float64 `json:"paydownPercent"`
	EntryLeverage  float64 `json:"entryLeverage"`
	ExitLeverage   float64 `json:"exitLeverage"`
	AverageDSCR    float64 `json:"averageDSCR"`

	MinimumDSCR            float64 `json:"minimumDSCR"`
	PeakLeverage           float64 `json:"peakLeverage"`
	CumulativeFreeCashFlow float64 `json:"cumulativeFreeCashFlow"`
}

// ProjectionResult is the LTM row followed by the projected years, plus the summary.
type ProjectionResult struct {
	Projections []YearProjection `json:"projections"`
	Summary     Summary          `json:"summary"`

	// DefaultedFields lists driver entries that were filled with fallbacks.
	DefaultedFields []string `json:"defaultedFields,omitempty"`
}

// LTM returns the year-0 row.
func (r ProjectionResult) LTM() YearProjection {
	if len(r.Projections) == 0 {
		return YearProjection{}
	}
	return r.Projections[0]
}

// Final returns the last projected year.
func (r ProjectionResult) Final() YearProjection {
	if len(r.Projections) == 0 {
		return YearProjection{}
	}
	return r.Projections[len(r.Projections)-1]
}
