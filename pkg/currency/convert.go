package currency

import (
	"fmt"
)

// Convert converts amount from one currency to another using the supplied
// rate. The amount is returned unchanged when both codes name the same
// currency; the rate is ignored in that case.
//
// Convert is pure: it performs no I/O and holds no rate table. Internal
// aggregates retain full floating precision; rounding happens only at
// display time via Format.
func Convert(amount float64, from, to Code, rate float64) float64 {
	if from.Equal(to) {
		return amount
	}
	return amount * rate
}

// Format renders a monetary amount with the currency's symbol and two
// decimal places. Unknown codes fall back to printing the raw code after
// the amount.
func Format(amount float64, code Code) string {
	meta, ok := Get(code)
	if !ok {
		return fmt.Sprintf("%.2f %s", amount, code.Normalize())
	}
	return fmt.Sprintf("%s%.2f", meta.Symbol, amount)
}
