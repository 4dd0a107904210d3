package ui

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws prices as one block character per column.
// Series longer than width are sampled evenly; a flat series draws mid blocks.
func Sparkline(prices []decimal.Decimal, width int) string {
	if len(prices) == 0 || width <= 0 {
		return ""
	}

	samples := prices
	if len(prices) > width {
		samples = make([]decimal.Decimal, width)
		for i := range samples {
			samples[i] = prices[i*len(prices)/width]
		}
		samples[width-1] = prices[len(prices)-1]
	}

	lo, hi := samples[0], samples[0]
	for _, p := range samples {
		lo = decimal.Min(lo, p)
		hi = decimal.Max(hi, p)
	}
	span := hi.Sub(lo).InexactFloat64()

	var b strings.Builder
	top := len(sparkBlocks) - 1
	for _, p := range samples {
		idx := top / 2
		if span > 0 {
			idx = int(math.Round(p.Sub(lo).InexactFloat64() / span * float64(top)))
		}
		b.WriteRune(sparkBlocks[max(0, min(idx, top))])
	}
	return b.String()
}
