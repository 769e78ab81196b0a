package validation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/api/request"
)

var hundred = decimal.NewFromInt(100)

// ValidateSetAllocation validates a target allocation request.
// Every target needs a ticker, no percentage may be negative or above 100,
// and a ticker may appear only once.
func ValidateSetAllocation(req request.SetAllocationRequest) error {
	errors := make(map[string]string)
	seen := make(map[string]bool, len(req.Targets))

	for i, target := range req.Targets {
		field := fmt.Sprintf("targets[%d]", i)
		ticker := NormalizeTicker(target.Ticker)
		switch {
		case ticker == "":
			errors[field] = "ticker is required"
		case seen[ticker]:
			errors[field] = fmt.Sprintf("duplicate ticker: %s", ticker)
		case target.Percentage.IsNegative() || target.Percentage.GreaterThan(hundred):
			errors[field] = "percentage must be between 0 and 100"
		}
		seen[ticker] = true
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
