// Package price turns display prices such as "1.299,99 TL" into decimals.
//
// It is a heuristic and not a currency parser: when a string carries both
// separators, "." groups thousands and "," marks the decimals. With a lone
// "," that comma is the decimal mark, and otherwise "." is.
package price

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Parse returns the numeric value of a display price, or zero when nothing
// numeric can be recovered from it.
func Parse(s string) decimal.Decimal {
	n := normalize(s)
	if n == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(n)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	n := b.String()

	hasComma := strings.Contains(n, ",")
	hasDot := strings.Contains(n, ".")
	switch {
	case hasComma && hasDot:
		n = strings.ReplaceAll(n, ".", "")
		n = strings.ReplaceAll(n, ",", ".")
	case hasComma:
		n = strings.ReplaceAll(n, ",", ".")
	}
	return n
}

// Line is the price of quantity units of an item priced at s.
func Line(s string, quantity int) decimal.Decimal {
	return Parse(s).Mul(decimal.NewFromInt(int64(quantity)))
}
