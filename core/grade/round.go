package grade

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds x half away from zero to the given number of decimal places.
// Every rounding done by the engine goes through here.
func Round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

func roundWhole(x float64) float64 { return Round(x, 0) }

func round2(x float64) float64 { return Round(x, 2) }
