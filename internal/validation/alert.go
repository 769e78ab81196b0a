package validation

import (
	"github.com/carteira-app/carteira/internal/api/request"
)

// ValidateSetAlert validates a price alert request. The target price is not
// checked here: a non-positive target is the request to remove the alert.
func ValidateSetAlert(req request.SetAlertRequest) error {
	errors := make(map[string]string)

	validateTicker(errors, req.Ticker)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
