package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a ledger transaction.
type Side string

const (
	// Buy adds shares to a holding and capital to its cost basis.
	Buy Side = "buy"
	// Sell removes shares from a holding.
	Sell Side = "sell"
)

// Valid reports whether s is a known transaction side.
func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// Transaction is a single immutable entry of an owner's ledger.
// Seq is the insertion sequence used to order transactions sharing a trade date.
type Transaction struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner"`
	Ticker    string          `json:"ticker"`
	Side      Side            `json:"side"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	TradeDate time.Time       `json:"tradeDate"`
	Seq       int64           `json:"-"`
	CreatedAt time.Time       `json:"createdAt,omitempty"`
}

// Amount returns quantity * unit price.
func (t Transaction) Amount() decimal.Decimal {
	return t.Quantity.Mul(t.UnitPrice)
}

// TransactionResponse represents a ledger entry for API responses.
type TransactionResponse struct {
	ID        string  `json:"id"`
	Owner     string  `json:"owner"`
	Ticker    string  `json:"ticker"`
	Side      Side    `json:"side"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
	TradeDate string  `json:"tradeDate"` // YYYY-MM-DD
}
