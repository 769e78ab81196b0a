package validation

import "github.com/carteira-app/carteira/internal/api/request"

// ValidateAddWatchlist validates a watchlist request.
func ValidateAddWatchlist(req request.AddWatchlistRequest) error {
	errors := make(map[string]string)

	validateTicker(errors, req.Ticker)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
