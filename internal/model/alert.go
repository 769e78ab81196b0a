package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Alert statuses.
const (
	AlertActive    = "active"
	AlertTriggered = "triggered"
)

// PriceAlert is a target price an owner wants to be notified about.
type PriceAlert struct {
	ID          string          `json:"id"`
	Owner       string          `json:"owner"`
	Ticker      string          `json:"ticker"`
	TargetPrice decimal.Decimal `json:"targetPrice"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	TriggeredAt *time.Time      `json:"triggeredAt,omitempty"`
}

// TriggeredAlert is an alert whose target was reached, with the price that reached it.
type TriggeredAlert struct {
	Alert        PriceAlert      `json:"alert"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
}
