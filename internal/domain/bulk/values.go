package bulk

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	leadingIntPattern    = regexp.MustCompile(`^[+-]?\d+`)
	leadingNumberPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)
)

// leadingInt parses the integer prefix of s after leading whitespace, so
// "2025 10:30" yields 2025.
func leadingInt(s string) (int, bool) {
	m := leadingIntPattern.FindString(strings.TrimLeft(s, " \t\r\n"))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseUnitPrice reads a spreadsheet price. The first comma is taken as the
// decimal separator and any trailing text (currency symbols) is ignored.
// Unparsable input yields zero.
func ParseUnitPrice(raw string) decimal.Decimal {
	s := strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
	m := leadingNumberPattern.FindString(s)
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(m, "."))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseQuantity reads a spreadsheet quantity. Missing, unparsable or
// non-positive values count as one unit.
func ParseQuantity(raw string) int {
	n, ok := leadingInt(raw)
	if !ok || n < 1 {
		return 1
	}
	return n
}

// ParseStock reads an on-hand stock count. Unparsable input yields zero.
func ParseStock(raw string) int {
	n, _ := leadingInt(raw)
	return n
}
