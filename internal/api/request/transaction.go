package request

import "github.com/shopspring/decimal"

// CreateTransactionRequest is the payload of a new ledger entry.
// Quantity and unit price accept JSON numbers or strings.
type CreateTransactionRequest struct {
	Ticker    string          `json:"ticker"`
	Side      string          `json:"side"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Date      string          `json:"date"`
}

// UpdateTransactionRequest changes selected fields of a ledger entry.
type UpdateTransactionRequest struct {
	Ticker    *string          `json:"ticker,omitempty"`
	Side      *string          `json:"side,omitempty"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
	Date      *string          `json:"date,omitempty"`
}

// ImportTransactionsRequest records a batch of ledger entries at once.
type ImportTransactionsRequest struct {
	Transactions []CreateTransactionRequest `json:"transactions"`
}
