package domain

import (
	"fmt"
	"strconv"
)

// TimeRange is a chart window in days.
type TimeRange int

const (
	Range24H TimeRange = 1
	Range7D  TimeRange = 7
	Range30D TimeRange = 30
	Range3M  TimeRange = 90
	Range1Y  TimeRange = 365
)

// TimeRanges lists the supported windows in display order.
var TimeRanges = []TimeRange{Range24H, Range7D, Range30D, Range3M, Range1Y}

// Days returns the window length in days.
func (r TimeRange) Days() int {
	return int(r)
}

// Label returns the selector label (24H, 7D, ...).
func (r TimeRange) Label() string {
	switch r {
	case Range24H:
		return "24H"
	case Range7D:
		return "7D"
	case Range30D:
		return "30D"
	case Range3M:
		return "3M"
	case Range1Y:
		return "1Y"
	default:
		return strconv.Itoa(int(r)) + "D"
	}
}

// Valid reports whether r is one of TimeRanges.
func (r TimeRange) Valid() bool {
	for _, v := range TimeRanges {
		if v == r {
			return true
		}
	}
	return false
}

// ParseTimeRange parses a day count such as "7".
func ParseTimeRange(s string) (TimeRange, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ValidationError{Field: "days", Err: fmt.Errorf("not a number: %q", s)}
	}
	r := TimeRange(n)
	if !r.Valid() {
		return 0, &ValidationError{Field: "days", Err: fmt.Errorf("unsupported range: %d", n)}
	}
	return r, nil
}

// SortOrder is a /coins/markets order value.
type SortOrder string

const (
	SortMarketCapDesc SortOrder = "market_cap_desc"
	SortMarketCapAsc  SortOrder = "market_cap_asc"
	SortPriceDesc     SortOrder = "price_desc"
	SortPriceAsc      SortOrder = "price_asc"
	SortChange24hDesc SortOrder = "percent_change_24h_desc"
	SortChange24hAsc  SortOrder = "percent_change_24h_asc"
)

// SortOrders lists orders in the sequence the dashboard cycles through.
var SortOrders = []SortOrder{
	SortMarketCapDesc, SortMarketCapAsc,
	SortPriceDesc, SortPriceAsc,
	SortChange24hDesc, SortChange24hAsc,
}

// Label returns the human readable name of the order.
func (s SortOrder) Label() string {
	switch s {
	case SortMarketCapDesc:
		return "Market Cap (High to Low)"
	case SortMarketCapAsc:
		return "Market Cap (Low to High)"
	case SortPriceDesc:
		return "Price (High to Low)"
	case SortPriceAsc:
		return "Price (Low to High)"
	case SortChange24hDesc:
		return "24h Change (High to Low)"
	case SortChange24hAsc:
		return "24h Change (Low to High)"
	default:
		return string(s)
	}
}

// Next returns the order following s, wrapping around.
func (s SortOrder) Next() SortOrder {
	for i, o := range SortOrders {
		if o == s {
			return SortOrders[(i+1)%len(SortOrders)]
		}
	}
	return SortOrders[0]
}

// Theme is the UI color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Toggle flips between light and dark.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}
