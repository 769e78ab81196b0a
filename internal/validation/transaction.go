package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/accounting"
	"github.com/carteira-app/carteira/internal/api/request"
	"github.com/carteira-app/carteira/internal/model"
)

// Ledger entry limits.
var (
	MinQuantity  = decimal.RequireFromString("0.00001")
	MinUnitPrice = decimal.RequireFromString("0.01")
)

// now is the clock behind the future-date check. "Today" is the local
// calendar day, the same day portfolio snapshots cut the ledger at.
var now = time.Now

// ValidateCreateTransaction validates a transaction creation request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - ticker: Must be non-empty
//   - side: Must be one of: buy, sell
//   - quantity: Must be at least 0.00001
//   - unitPrice: Must be at least 0.01
//   - date: Must be in YYYY-MM-DD format and not in the future
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	validateTicker(errors, req.Ticker)
	validateSide(errors, req.Side)
	validateQuantity(errors, req.Quantity)
	validateUnitPrice(errors, req.UnitPrice)
	validateTradeDate(errors, req.Date)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateTransaction validates a transaction update request.
// All fields are optional, but if provided, they must meet the same constraints as create.
func ValidateUpdateTransaction(req request.UpdateTransactionRequest) error {
	errors := make(map[string]string)

	if req.Ticker != nil {
		validateTicker(errors, *req.Ticker)
	}
	if req.Side != nil {
		validateSide(errors, *req.Side)
	}
	if req.Quantity != nil {
		validateQuantity(errors, *req.Quantity)
	}
	if req.UnitPrice != nil {
		validateUnitPrice(errors, *req.UnitPrice)
	}
	if req.Date != nil {
		validateTradeDate(errors, *req.Date)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// MaxImportSize bounds the number of entries of a single import.
const MaxImportSize = 1000

// ValidateImportTransactions validates every entry of a batch import.
// Field errors are keyed as "transactions[i].field".
func ValidateImportTransactions(req request.ImportTransactionsRequest) error {
	switch {
	case len(req.Transactions) == 0:
		return &Error{Fields: map[string]string{"transactions": "at least one transaction is required"}}
	case len(req.Transactions) > MaxImportSize:
		return &Error{Fields: map[string]string{"transactions": fmt.Sprintf("at most %d transactions per import", MaxImportSize)}}
	}

	errors := make(map[string]string)
	for i, t := range req.Transactions {
		if verr, ok := ValidateCreateTransaction(t).(*Error); ok {
			for field, msg := range verr.Fields {
				errors[fmt.Sprintf("transactions[%d].%s", i, field)] = msg
			}
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func validateTicker(errors map[string]string, ticker string) {
	if strings.TrimSpace(ticker) == "" {
		errors["ticker"] = "ticker is required"
	}
}

func validateSide(errors map[string]string, side string) {
	if strings.TrimSpace(side) == "" {
		errors["side"] = "side is required"
	} else if !model.Side(strings.ToLower(side)).Valid() {
		errors["side"] = fmt.Sprintf("invalid side: %s", side)
	}
}

func validateQuantity(errors map[string]string, q decimal.Decimal) {
	if q.LessThan(MinQuantity) {
		errors["quantity"] = "quantity must be at least " + MinQuantity.String()
	}
}

func validateUnitPrice(errors map[string]string, p decimal.Decimal) {
	if p.LessThan(MinUnitPrice) {
		errors["unitPrice"] = "unitPrice must be at least " + MinUnitPrice.StringFixed(2)
	}
}

func validateTradeDate(errors map[string]string, date string) {
	if strings.TrimSpace(date) == "" {
		errors["date"] = "date is required"
		return
	}
	parsed, err := time.Parse(time.DateOnly, date)
	if err != nil {
		errors["date"] = err.Error()
		return
	}
	if parsed.After(accounting.DateOf(now())) {
		errors["date"] = "date cannot be in the future"
	}
}
