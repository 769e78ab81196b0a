package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/model"
	"github.com/carteira-app/carteira/internal/repository"
)

// TransactionBuilder provides a fluent interface for creating ledger entries.
//
// Example usage:
//
//	// Simple creation with defaults (buy 100 @ 10.00 today)
//	tx := testutil.NewTransaction(owner, "PETR4.SA").Build(t, db)
//
//	// Customized entry
//	tx := testutil.NewTransaction(owner, "PETR4.SA").
//	    Sell().
//	    WithQuantity("5").
//	    WithUnitPrice("25").
//	    WithDate(testutil.Date("2023-03-01")).
//	    Build(t, db)
type TransactionBuilder struct {
	ID        string
	Owner     string
	Ticker    string
	Side      model.Side
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	TradeDate time.Time
}

// NewTransaction creates a TransactionBuilder with defaults
func NewTransaction(owner, ticker string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:        MakeID(),
		Owner:     owner,
		Ticker:    ticker,
		Side:      model.Buy,
		Quantity:  decimal.NewFromInt(100),
		UnitPrice: decimal.NewFromInt(10),
		TradeDate: Date(time.Now().UTC().Format(time.DateOnly)),
	}
}

// WithID sets a custom ID
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// WithDate sets the trade date
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.TradeDate = date
	return b
}

// Sell makes the entry a sell.
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	b.Side = model.Sell
	return b
}

// WithQuantity sets the quantity from its decimal text.
func (b *TransactionBuilder) WithQuantity(quantity string) *TransactionBuilder {
	b.Quantity = decimal.RequireFromString(quantity)
	return b
}

// WithUnitPrice sets the unit price from its decimal text.
func (b *TransactionBuilder) WithUnitPrice(price string) *TransactionBuilder {
	b.UnitPrice = decimal.RequireFromString(price)
	return b
}

// Build inserts the entry through the repository so it gets its insertion sequence.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	tx := model.Transaction{
		ID:        b.ID,
		Owner:     b.Owner,
		Ticker:    b.Ticker,
		Side:      b.Side,
		Quantity:  b.Quantity,
		UnitPrice: b.UnitPrice,
		TradeDate: b.TradeDate,
	}
	if err := repository.NewTransactionRepository(db).InsertTransaction(context.Background(), &tx); err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	return tx
}

// CreateScenarioLedger inserts the reference ledger for owner:
// buy 10 @ 10 on 2023-01-01, buy 10 @ 20 on 2023-02-01, sell 5 @ 25 on 2023-03-01,
// all on ticker.
func CreateScenarioLedger(t *testing.T, db *sql.DB, owner, ticker string) []model.Transaction {
	t.Helper()

	return []model.Transaction{
		NewTransaction(owner, ticker).WithQuantity("10").WithUnitPrice("10").WithDate(Date("2023-01-01")).Build(t, db),
		NewTransaction(owner, ticker).WithQuantity("10").WithUnitPrice("20").WithDate(Date("2023-02-01")).Build(t, db),
		NewTransaction(owner, ticker).Sell().WithQuantity("5").WithUnitPrice("25").WithDate(Date("2023-03-01")).Build(t, db),
	}
}

// CreateAlert stores an active alert of owner on ticker.
func CreateAlert(t *testing.T, db *sql.DB, owner, ticker, target string) model.PriceAlert {
	t.Helper()

	alert := model.PriceAlert{
		Owner:       owner,
		Ticker:      ticker,
		TargetPrice: decimal.RequireFromString(target),
	}
	if err := repository.NewAlertRepository(db).UpsertAlert(context.Background(), &alert); err != nil {
		t.Fatalf("Failed to create alert: %v", err)
	}
	return alert
}

// Date parses a YYYY-MM-DD date at midnight UTC, failing loudly on bad input.
func Date(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}
