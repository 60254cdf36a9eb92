// Package money renders and combines decimal amounts in Brazilian reais.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const currencySymbol = "R$"

// Format renders d as pt-BR currency, e.g. "R$ 1.234,56" or "-R$ 0,50".
func Format(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	units, cents, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(currencySymbol)
	b.WriteByte(' ')
	for i, c := range units {
		if i > 0 && (len(units)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	b.WriteByte(',')
	b.WriteString(cents)
	return b.String()
}

// Multiply returns unit × quantity.
func Multiply(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

// Sum adds all amounts; the empty sum is zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, amounts...)
}
