package calc

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount as US dollars with thousands
// grouping and two decimal places, e.g. "$1,234.56".
func FormatCurrency(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	if negative {
		fixed = fixed[1:]
	}

	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteByte('$')

	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	b.WriteByte('.')
	b.WriteString(frac)

	return b.String()
}

// FormatPercent renders a percentage with two decimal places, e.g. "15.00%".
func FormatPercent(pct decimal.Decimal) string {
	return pct.StringFixed(2) + "%"
}
