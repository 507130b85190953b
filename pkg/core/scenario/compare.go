package scenario

import "levfin_model/pkg/core/projection"

// Comparison is a scenario's headline statistics and their change vs base.
type Comparison struct {
	Name string `json:"name"`

	ExitLeverage   float64 `json:"exitLeverage"`
	PaydownPercent float64 `json:"paydownPercent"`
	TotalPaydown   float64 `json:"totalPaydown"`
	AverageDSCR    float64 `json:"averageDSCR"`
	MinimumDSCR    float64 `json:"minimumDSCR"`

	ExitLeverageDelta   float64 `json:"exitLeverageDelta"`
	PaydownPercentDelta float64 `json:"paydownPercentDelta"`
	TotalPaydownDelta   float64 `json:"totalPaydownDelta"`
	AverageDSCRDelta    float64 `json:"averageDSCRDelta"`
}

// Compare diffs every outcome against outcomes[0].
func Compare(outcomes []Outcome) []Comparison {
	if len(outcomes) == 0 {
		return nil
	}
	base := outcomes[0].Result.Summary

	out := make([]Comparison, 0, len(outcomes))
	for _, o := range outcomes {
		s := o.Result.Summary
		out = append(out, Comparison{
			Name:                o.Name,
			ExitLeverage:        s.ExitLeverage,
			PaydownPercent:      s.PaydownPercent,
			TotalPaydown:        s.TotalPaydown,
			AverageDSCR:         s.AverageDSCR,
			MinimumDSCR:         s.MinimumDSCR,
			ExitLeverageDelta:   projection.RoundRatio(s.ExitLeverage - base.ExitLeverage),
			PaydownPercentDelta: projection.RoundPercent(s.PaydownPercent - base.PaydownPercent),
			TotalPaydownDelta:   projection.RoundMoney(s.TotalPaydown - base.TotalPaydown),
			AverageDSCRDelta:    projection.RoundRatio(s.AverageDSCR - base.AverageDSCR),
		})
	}
	return out
}
