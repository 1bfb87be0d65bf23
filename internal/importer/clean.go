package importer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	nonAmountChars = regexp.MustCompile(`[^0-9.,]`)
	nonDigitChars  = regexp.MustCompile(`[^0-9]`)
)

// cleanPrice strips currency symbols and thousands separators,
// normalizes the decimal separator, and parses the remainder.
// ok is false when nothing parseable remains.
func cleanPrice(raw string) (decimal.Decimal, bool) {
	cleaned := nonAmountChars.ReplaceAllString(raw, "")
	if cleaned == "" {
		return decimal.Zero, false
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")
	switch {
	case hasComma && hasDot:
		// Both present: the dot is the decimal separator.
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case hasComma:
		parts := strings.Split(cleaned, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			// Trailing group of at most two digits: decimal separator.
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			// Thousands separator.
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

// cleanStock extracts the digits from the raw field; anything else
// defaults to zero.
func cleanStock(raw string) int {
	digits := nonDigitChars.ReplaceAllString(raw, "")
	if digits == "" {
		return 0
	}
	value, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return value
}

// cleanBarcode keeps the barcode verbatim apart from surrounding
// whitespace. Storefront exports carry barcodes in arbitrary character
// sets and they must survive the import unmodified.
func cleanBarcode(raw string) string {
	return strings.TrimSpace(raw)
}

const barcodeMinAlnum = 3

// barcodeWarning returns a non-blocking warning for short barcodes.
// Empty barcodes are always valid and warn about nothing.
func barcodeWarning(barcode string) string {
	if barcode == "" {
		return ""
	}
	count := 0
	for _, r := range barcode {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			count++
		}
	}
	if count < barcodeMinAlnum {
		return "barcode has fewer than 3 alphanumeric characters"
	}
	return ""
}
