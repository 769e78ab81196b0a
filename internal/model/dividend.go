package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DividendEvent is a dividend paid by a ticker, as reported by the dividend feed.
// ExDate may carry a time and zone; consumers compare calendar dates only.
type DividendEvent struct {
	Ticker         string
	ExDate         time.Time
	AmountPerShare decimal.Decimal
}
