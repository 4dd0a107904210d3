// Package format turns raw market figures into display strings.
package format

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	cent     = decimal.New(1, -2)
	thousand = decimal.New(1, 3)
	million  = decimal.New(1, 6)
	billion  = decimal.New(1, 9)
	trillion = decimal.New(1, 12)
)

// Currency formats v as USD.
// Positive values from 1K upward are abbreviated with one decimal (K/M/B/T),
// sub-cent values keep six decimals, everything else is grouped with two.
func Currency(v decimal.Decimal) string {
	if v.IsPositive() && v.LessThan(cent) {
		return "$" + v.StringFixed(6)
	}
	if abbr, ok := abbreviate(v); ok {
		return "$" + abbr
	}
	if v.IsNegative() {
		return "-$" + group(v.Abs().StringFixed(2))
	}
	return "$" + group(v.StringFixed(2))
}

// CurrencyFloat is Currency for float inputs (chart axes).
func CurrencyFloat(f float64) string {
	return Currency(decimal.NewFromFloat(f))
}

// Percentage formats v with two decimals and a leading sign.
// Zero is treated as non-negative and prints "+0.00%".
func Percentage(v decimal.Decimal) string {
	out := v.StringFixed(2)
	switch {
	case !v.IsNegative():
		return "+" + out + "%"
	case !strings.HasPrefix(out, "-"):
		// small negatives round to zero and lose their sign
		return "-" + out + "%"
	}
	return out + "%"
}

// Number formats v like Currency without the dollar sign; values below
// 1K keep up to three decimals.
func Number(v decimal.Decimal) string {
	if abbr, ok := abbreviate(v); ok {
		return abbr
	}
	return group(v.Round(3).String())
}

// Ago renders t relative to now ("3 minutes ago").
func Ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

func abbreviate(v decimal.Decimal) (string, bool) {
	switch {
	case v.GreaterThanOrEqual(trillion):
		return v.Div(trillion).StringFixed(1) + "T", true
	case v.GreaterThanOrEqual(billion):
		return v.Div(billion).StringFixed(1) + "B", true
	case v.GreaterThanOrEqual(million):
		return v.Div(million).StringFixed(1) + "M", true
	case v.GreaterThanOrEqual(thousand):
		return v.Div(thousand).StringFixed(1) + "K", true
	}
	return "", false
}

// group inserts thousands separators into a plain decimal string.
func group(s string) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, hasFrac := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return s
	}

	out := humanize.Comma(n)
	if hasFrac {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
