package provider

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	nonPriceChars  = regexp.MustCompile(`[^0-9,.]+`)
	nonDigitChars  = regexp.MustCompile(`[^0-9]`)
	historyDateFmt = "Jan 2 2006"
)

// parsePrice normalizes a localized price string ("$12.34", "12,34€",
// "1,234.56") to a decimal value. Steam renders prices in the configured
// currency's local format, so both separator conventions show up.
func parsePrice(text string) (float64, error) {
	cleaned := nonPriceChars.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0, fmt.Errorf("no digits in price %q", text)
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")
	switch {
	case hasComma && hasDot:
		// "1,234.56" — commas are thousands separators.
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case hasComma:
		// "12,34" — comma is the decimal separator.
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", text, err)
	}
	return price, nil
}

// parseVolume extracts a non-negative integer from a formatted volume
// string ("1,234"). Missing or malformed volume yields zero, which the
// pipeline stores as unknown rather than failing.
func parseVolume(text string) int64 {
	digits := nonDigitChars.ReplaceAllString(text, "")
	if digits == "" {
		return 0
	}
	volume, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return volume
}

// parseHistoryDate decodes Steam graph timestamps like "Feb 21 2014 01: +0"
// down to day granularity.
func parseHistoryDate(text string) (time.Time, error) {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return time.Time{}, fmt.Errorf("malformed history date %q", text)
	}
	return time.Parse(historyDateFmt, strings.Join(fields[:3], " "))
}
