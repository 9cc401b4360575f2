package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Lenient BRL parsing and formatting
// =============================================================================
//
// Admin users type amounts as free text ("R$ 1.234,56", "350", "1234,5").
// Parsing is deliberately lenient: anything unparseable becomes zero rather
// than an error. Formatting always renders the Brazilian-real convention.
// Round-trip law: ParseAmount(FormatAmount(x)) == x.Round(2) for x >= 0.

// ParseAmount converts localized currency text to a decimal amount. Every
// character except digits and the decimal comma is stripped, the comma
// becomes a decimal point, and the result is parsed as a non-negative value.
// Unparseable or negative input yields zero; this never fails.
func ParseAmount(text string) decimal.Decimal {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.Replace(b.String(), ",", ".", 1)
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// FormatAmount renders an amount as Brazilian currency text, e.g.
// "R$ 1.234,56": dot thousands separators, comma decimals, two places.
func FormatAmount(amount decimal.Decimal) string {
	fixed := amount.Round(2).StringFixed(2) // "1234.56"
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := "R$ " + strings.Join(groups, ".") + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// Round2 rounds to cents. All stored amounts are kept at two places.
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
