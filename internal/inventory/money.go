package inventory

import "github.com/shopspring/decimal"

// lineTotal is price × qty without binary float drift (0.1 × 3 is 0.3).
func lineTotal(price float64, qty int) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty))).InexactFloat64()
}

func sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}
