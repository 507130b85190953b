package assumption

import (
	"encoding/json"
	"errors"
	"fmt"

	"levfin_model/pkg/core/utils"
)

// wire form: pointer scalars so that an absent field differs from zero.
type wireDebt struct {
	Principal             *float64 `json:"principal"`
	InterestRatePercent   *float64 `json:"interestRatePercent"`
	MandatoryAmortPercent *float64 `json:"mandatoryAmortPercent"`
}

type wireAssumptions struct {
	LTMRevenue           *float64  `json:"ltmRevenue"`
	LTMEbitda            *float64  `json:"ltmEbitda"`
	RevenueGrowthPercent []float64 `json:"revenueGrowthPercent"`
	EbitdaMarginPercent  []float64 `json:"ebitdaMarginPercent"`
	CapexPercent         []float64 `json:"capexPercent"`
	EbitdaAdjustments    []float64 `json:"ebitdaAdjustments"`
	TaxRatePercent       *float64  `json:"taxRatePercent"`
	DepreciationPercent  *float64  `json:"depreciationPercent"`
	Debt                 *wireDebt `json:"debt"`
	CashSweepPercent     *float64  `json:"cashSweepPercent"`
}

// Decode parses the canonical JSON form. Missing required scalars
// (ltmRevenue, ltmEbitda, debt.principal, debt.interestRatePercent) are
// reported as *ValidationError wrapping ErrMissingField; optional scalars
// default to zero.
func Decode(data []byte) (Assumptions, error) {
	if err := checkSchema(data); err != nil {
		return Assumptions{}, err
	}

	var w wireAssumptions
	if err := json.Unmarshal(data, &w); err != nil {
		return Assumptions{}, fmt.Errorf("decode assumptions: %w", err)
	}

	var errs []error
	if w.LTMRevenue == nil {
		errs = append(errs, missing("ltmRevenue"))
	}
	if w.LTMEbitda == nil {
		errs = append(errs, missing("ltmEbitda"))
	}
	if w.Debt == nil {
		errs = append(errs, missing("debt"))
	} else {
		if w.Debt.Principal == nil {
			errs = append(errs, missing("debt.principal"))
		}
		if w.Debt.InterestRatePercent == nil {
			errs = append(errs, missing("debt.interestRatePercent"))
		}
	}
	if len(errs) > 0 {
		return Assumptions{}, errors.Join(errs...)
	}

	a := Assumptions{
		LTMRevenue:           *w.LTMRevenue,
		LTMEbitda:            *w.LTMEbitda,
		RevenueGrowthPercent: w.RevenueGrowthPercent,
		EbitdaMarginPercent:  w.EbitdaMarginPercent,
		CapexPercent:         w.CapexPercent,
		EbitdaAdjustments:    w.EbitdaAdjustments,
		TaxRatePercent:       deref(w.TaxRatePercent),
		DepreciationPercent:  deref(w.DepreciationPercent),
		CashSweepPercent:     deref(w.CashSweepPercent),
		Debt: DebtTranche{
			Principal:             *w.Debt.Principal,
			InterestRatePercent:   *w.Debt.InterestRatePercent,
			MandatoryAmortPercent: deref(w.Debt.MandatoryAmortPercent),
		},
	}

	if err := Validate(a); err != nil {
		return Assumptions{}, err
	}
	return a, nil
}

// DecodeLenient accepts hand-edited input: strict JSON first, then HJSON
// (comments, unquoted keys, trailing commas), then a best-effort JSON repair.
// Field-level validation is identical to Decode.
func DecodeLenient(data []byte) (Assumptions, error) {
	canonical, _, err := utils.CanonicalJSON(data)
	if err != nil {
		return Assumptions{}, fmt.Errorf("assumptions are not valid JSON or HJSON: %w", err)
	}
	return Decode(canonical)
}

// Encode writes the canonical JSON form. Nil driver arrays are written as
// empty arrays so the output always decodes again.
func Encode(a Assumptions) ([]byte, error) {
	out := a.Clone()
	for _, s := range []*[]float64{&out.RevenueGrowthPercent, &out.EbitdaMarginPercent, &out.CapexPercent, &out.EbitdaAdjustments} {
		if *s == nil {
			*s = []float64{}
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
