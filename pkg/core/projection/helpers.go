package projection

import (
	"math"

	"github.com/shopspring/decimal"
)

var decimalHalf = decimal.NewFromFloat(0.5)

// roundHalfUp rounds to the given decimal places with ties going toward
// +Inf. The tie is decided on the value's shortest decimal representation,
// so 2.675 rounds to 2.68. Binary scale-and-round (Math.round(x*100)/100)
// gives 2.67 for that input; results differ from it only on such ties.
func roundHalfUp(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	d := decimal.NewFromFloat(v).Shift(places).Add(decimalHalf).Floor().Shift(-places)
	f, _ := d.Float64()
	if f == 0 {
		return 0 // no negative zero
	}
	return f
}

// RoundMoney rounds to whole currency units.
func RoundMoney(v float64) float64 { return roundHalfUp(v, 0) }

// RoundRatio rounds to two decimals.
func RoundRatio(v float64) float64 { return roundHalfUp(v, 2) }

// RoundPercent rounds to one decimal.
func RoundPercent(v float64) float64 { return roundHalfUp(v, 1) }

// SafeDivide returns 0 instead of NaN or Inf.
func SafeDivide(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

func pct(base, percent float64) float64 {
	return base * percent / 100
}
