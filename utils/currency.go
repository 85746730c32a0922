package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrencyIDR formats an amount as an Indonesian Rupiah string.
// Example: 15000.50 -> "Rp 15.000,50", 15000 -> "Rp 15.000"
func FormatCurrencyIDR(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	// Bulatkan ke 2 digit desimal lalu pisahkan bagian integer dan desimal
	amount = amount.Round(2)
	integer := amount.Truncate(0)
	fraction := amount.Sub(integer)

	// Format bagian integer dengan pemisah ribuan
	digits := integer.String()
	var groups []string
	for i := len(digits); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{digits[start:i]}, groups...)
	}
	integerStr := strings.Join(groups, ".")

	if fraction.IsZero() {
		return "Rp " + sign + integerStr
	}

	cents := fraction.Shift(2).StringFixed(0)
	if len(cents) < 2 {
		cents = "0" + cents
	}
	return "Rp " + sign + integerStr + "," + cents
}
