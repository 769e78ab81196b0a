package validation

import (
	"strings"
	"unicode"
)

// B3Suffix is appended to bare B3 tickers so the price feed resolves them.
const B3Suffix = ".SA"

// NormalizeTicker trims and upper-cases a ticker. A ticker without an
// exchange suffix that contains a digit (PETR4, TAEE11) is a B3 listing and
// gets the ".SA" suffix; plain letters (AAPL) are left as they are.
func NormalizeTicker(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" || strings.Contains(t, ".") || strings.HasPrefix(t, "^") {
		return t
	}
	if strings.ContainsFunc(t, unicode.IsDigit) {
		return t + B3Suffix
	}
	return t
}
