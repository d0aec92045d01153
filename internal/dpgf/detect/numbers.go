package detect

import (
	"strconv"
	"strings"
)

// currencyStripper drops currency symbols and every kind of space, including
// the non-breaking spaces French Excel uses as thousands separators.
var currencyStripper = strings.NewReplacer(
	"€", "", "$", "", "£", "",
	" ", "", " ", "", " ", "", "\t", "",
)

// ParseDecimal converts French-locale price and quantity strings to a
// float64. "1 234,00 €" parses to 1234.0, "1.234,56" to 1234.56 and "12,5"
// to 12.5. Anglo grouping ("1,234.56") is handled too. The ok flag is false
// for blank or unparseable input; callers treat those cells as empty.
func ParseDecimal(s string) (float64, bool) {
	cleaned := currencyStripper.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, false
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// French: dots group thousands, the comma marks decimals.
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			// Anglo: commas group thousands.
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// isNumericCell reports whether a cell holds something ParseDecimal accepts.
// Used by the content-based column profiler.
func isNumericCell(s string) bool {
	_, ok := ParseDecimal(s)
	return ok
}
