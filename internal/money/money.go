// Package money holds currency arithmetic and display formatting. All
// amounts in the system are pesos with two decimal places; arithmetic goes
// through decimal so repeated partial payments never accumulate float drift.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance for overpayment checks after rounding.
const Epsilon = 1e-6

// Round2 rounds to two decimal places. NaN and infinities are treated as
// zero so a missing upstream amount can never poison a total.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Add2 returns a+b rounded to two decimals.
func Add2(a, b float64) float64 {
	return Round2(clean(a) + clean(b))
}

// Sub2 returns a-b rounded to two decimals.
func Sub2(a, b float64) float64 {
	return Round2(clean(a) - clean(b))
}

// Sum2 totals a list of amounts, rounding after each addition.
func Sum2(vs ...float64) float64 {
	var total float64
	for _, v := range vs {
		total = Add2(total, v)
	}
	return total
}

func clean(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Format renders an amount as "$ 1.234,56" (dot thousands separator, comma
// decimals). It never fails: NaN and infinities render as the zero amount.
func Format(v float64) string {
	d := decimal.NewFromFloat(clean(v)).Round(2)

	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}

	fixed := d.StringFixed(2) // "1234.56"
	intPart, decPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString("$ ")
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(decPart)
	return b.String()
}

// FormatPtr renders a nullable amount; nil is the zero amount.
func FormatPtr(v *float64) string {
	if v == nil {
		return Format(0)
	}
	return Format(*v)
}
