package pipeline

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatKES renders an amount as whole shillings with thousands separators,
// e.g. "KES 1,234,568".
func FormatKES(d decimal.Decimal) string {
	return "KES " + FormatThousands(d.RoundBank(0).String())
}

// FormatAverage renders a nullable amount, or "KES -" when it is null.
func FormatAverage(d decimal.NullDecimal) string {
	if !d.Valid {
		return "KES -"
	}
	return FormatKES(d.Decimal)
}

// FormatThousands inserts commas into the integer part of a decimal string.
func FormatThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}
