package request

import "github.com/shopspring/decimal"

// SetAlertRequest registers a target price for a ticker.
// A target of zero or less removes the alert.
type SetAlertRequest struct {
	Ticker      string          `json:"ticker"`
	TargetPrice decimal.Decimal `json:"targetPrice"`
}
