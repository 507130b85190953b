// Package assumption holds the input side of the leveraged-finance model:
// the borrower's LTM financials, the per-year operating drivers and the
// single senior debt tranche. It normalizes partial driver arrays to the
// fixed projection horizon and validates inputs at the parse boundary.
package assumption

// ProjectionYears is the fixed model horizon.
const ProjectionYears = 5

// Fallbacks for missing per-year entries.
const (
	DefaultGrowthPercent = 0.0
	DefaultMarginPercent = 25.0
	DefaultCapexPercent  = 3.0
	DefaultAdjustment    = 0.0
)

// DebtTranche is the single senior tranche being syndicated.
type DebtTranche struct {
	Principal             float64 `json:"principal" yaml:"principal"`
	InterestRatePercent   float64 `json:"interestRatePercent" yaml:"interestRatePercent"`
	MandatoryAmortPercent float64 `json:"mandatoryAmortPercent" yaml:"mandatoryAmortPercent"`
}

// Assumptions is one what-if input snapshot. Per-year slices may hold
// fewer than ProjectionYears entries; see Normalize.
type Assumptions struct {
	LTMRevenue           float64     `json:"ltmRevenue" yaml:"ltmRevenue"`
	LTMEbitda            float64     `json:"ltmEbitda" yaml:"ltmEbitda"`
	RevenueGrowthPercent []float64   `json:"revenueGrowthPercent" yaml:"revenueGrowthPercent"`
	EbitdaMarginPercent  []float64   `json:"ebitdaMarginPercent" yaml:"ebitdaMarginPercent"`
	CapexPercent         []float64   `json:"capexPercent" yaml:"capexPercent"`
	EbitdaAdjustments    []float64   `json:"ebitdaAdjustments" yaml:"ebitdaAdjustments"` // absolute currency
	TaxRatePercent       float64     `json:"taxRatePercent" yaml:"taxRatePercent"`
	DepreciationPercent  float64     `json:"depreciationPercent" yaml:"depreciationPercent"` // % of revenue
	Debt                 DebtTranche `json:"debt" yaml:"debt"`
	CashSweepPercent     float64     `json:"cashSweepPercent" yaml:"cashSweepPercent"`
}

// Clone returns a deep copy so edits to the copy never reach a running projection.
func (a Assumptions) Clone() Assumptions {
	out := a
	out.RevenueGrowthPercent = cloneFloats(a.RevenueGrowthPercent)
	out.EbitdaMarginPercent = cloneFloats(a.EbitdaMarginPercent)
	out.CapexPercent = cloneFloats(a.CapexPercent)
	out.EbitdaAdjustments = cloneFloats(a.EbitdaAdjustments)
	return out
}

func cloneFloats(in []float64) []float64 {
	if in == nil {
		return nil
	}
	out := make([]float64, len(in))
	copy(out, in)
	return out
}

// YearDrivers are the operating drivers for one projected year.
type YearDrivers struct {
	GrowthPercent float64 `json:"growthPercent"`
	MarginPercent float64 `json:"marginPercent"`
	CapexPercent  float64 `json:"capexPercent"`
	Adjustment    float64 `json:"adjustment"`
}

// Normalized is an Assumptions value with exactly ProjectionYears drivers.
type Normalized struct {
	LTMRevenue          float64                      `json:"ltmRevenue"`
	LTMEbitda           float64                      `json:"ltmEbitda"`
	Years               [ProjectionYears]YearDrivers `json:"years"`
	TaxRatePercent      float64                      `json:"taxRatePercent"`
	DepreciationPercent float64                      `json:"depreciationPercent"`
	Debt                DebtTranche                  `json:"debt"`
	CashSweepPercent    float64                      `json:"cashSweepPercent"`

	// Defaulted lists every entry filled with a fallback, e.g. "capexPercent[4]".
	Defaulted []string `json:"defaulted,omitempty"`
}
