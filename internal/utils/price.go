package utils

import (
	"strconv"
)

// ParseUnitPrice extracts the unit price from an operator-entered price
// string. Trip prices are free text to accommodate mixed currency and
// formatting conventions ("500 SAR", "ريال 500", "USD 45/person"), so the
// numeric value is the first contiguous run of ASCII digits found in the
// string. Arabic-Indic numerals in surrounding text are skipped over, not
// parsed. Returns 0 when no ASCII digits are present; callers must treat 0
// as invalid pricing and refuse to create a booking from it.
func ParseUnitPrice(priceText string) float64 {
	start := -1
	for i := 0; i < len(priceText); i++ {
		if priceText[i] >= '0' && priceText[i] <= '9' {
			start = i
			break
		}
	}
	if start == -1 {
		return 0
	}

	end := start
	for end < len(priceText) && priceText[end] >= '0' && priceText[end] <= '9' {
		end++
	}

	value, err := strconv.ParseFloat(priceText[start:end], 64)
	if err != nil {
		return 0
	}
	return value
}
