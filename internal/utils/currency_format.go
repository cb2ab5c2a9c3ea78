package utils

import (
	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with two decimal places, e.g. 12.3 -> "12.30".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
