package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal dollar string to cents.
//
// Rounding policy: half-up on the third decimal digit, applied to the
// decimal literal itself rather than a float64 round-trip, so boundary
// values behave deterministically.
//
// Examples:
//
//	ParseDecimalToCents("4.50")  -> 450, nil
//	ParseDecimalToCents("4.004") -> 400, nil (rounds down)
//	ParseDecimalToCents("4.005") -> 401, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// DollarsToCents converts a float dollar amount to cents under the same
// half-up policy as ParseDecimalToCents. The value is rendered with the
// shortest exact decimal representation first so that model-supplied
// numbers such as 4.005 are rounded on their literal digits.
func DollarsToCents(dollars float64) (int64, error) {
	if math.IsNaN(dollars) || math.IsInf(dollars, 0) || dollars < 0 {
		return 0, ErrInvalidAmount
	}
	return ParseDecimalToCents(strconv.FormatFloat(dollars, 'f', -1, 64))
}

// FormatCents renders cents as a dollar string with two decimals, e.g.
// 450 -> "4.50". Amounts are non-negative throughout the ledger.
func FormatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
