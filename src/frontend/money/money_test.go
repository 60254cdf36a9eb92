package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"0":          "R$ 0,00",
		"5":          "R$ 5,00",
		"25.5":       "R$ 25,50",
		"999.999":    "R$ 1.000,00",
		"1234.56":    "R$ 1.234,56",
		"1234567.8":  "R$ 1.234.567,80",
		"-0.5":       "-R$ 0,50",
		"100000":     "R$ 100.000,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, Format(decimal.RequireFromString(in)), in)
	}
}

func TestFormatRoundsHalfUp(t *testing.T) {
	cases := map[string]string{
		"0.125":  "R$ 0,13",
		"2.675":  "R$ 2,68",
		"0.005":  "R$ 0,01",
		"-0.125": "-R$ 0,13",
		"1.004":  "R$ 1,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, Format(decimal.RequireFromString(in)), in)
	}
}

func TestMultiplyAndSum(t *testing.T) {
	a := Multiply(decimal.RequireFromString("10.00"), 2)
	b := Multiply(decimal.RequireFromString("5.00"), 1)
	assert.True(t, Sum(a, b).Equal(decimal.RequireFromString("25")))
	assert.True(t, Sum().IsZero())
}
