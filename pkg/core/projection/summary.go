package projection

// Summarize reduces a projection sequence (LTM row first) to headline
// credit statistics. Year 0 is excluded from every average and extreme.
func Summarize(principal, ltmEbitda float64, rows []YearProjection) Summary {
	s := Summary{}
	if ltmEbitda > 0 {
		s.EntryLeverage = RoundRatio(principal / ltmEbitda)
	}
	if len(rows) < 2 {
		return s
	}

	final := rows[len(rows)-1]
	s.TotalPaydown = RoundMoney(principal - final.EndingDebt)
	s.PaydownPercent = RoundPercent(SafeDivide(s.TotalPaydown, principal) * 100)
	s.ExitLeverage = final.LeverageRatio

	projected := rows[1:]
	var dscrSum, fcfSum float64
	s.MinimumDSCR = projected[0].DebtServiceCoverageRatio
	for _, r := range projected {
		dscrSum += r.DebtServiceCoverageRatio
		fcfSum += r.FreeCashFlow
		s.MinimumDSCR = min(s.MinimumDSCR, r.DebtServiceCoverageRatio)
		s.PeakLeverage = max(s.PeakLeverage, r.LeverageRatio)
	}
	s.AverageDSCR = RoundRatio(dscrSum / float64(len(projected)))
	s.CumulativeFreeCashFlow = RoundMoney(fcfSum)

	return s
}
