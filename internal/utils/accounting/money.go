package accounting

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places amounts are kept at.
const MoneyPlaces = 2

// Round2 rounds an amount to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Sum adds up amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range amounts {
		total = total.Add(d)
	}
	return total
}
