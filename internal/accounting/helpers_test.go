package accounting_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var txSeq int64

func tx(side model.Side, ticker, quantity, price, date string) model.Transaction {
	txSeq++
	return model.Transaction{
		ID:        fmt.Sprintf("tx-%d", txSeq),
		Owner:     "alice",
		Ticker:    ticker,
		Side:      side,
		Quantity:  dec(quantity),
		UnitPrice: dec(price),
		TradeDate: day(date),
		Seq:       txSeq,
	}
}

func buy(ticker, quantity, price, date string) model.Transaction {
	return tx(model.Buy, ticker, quantity, price, date)
}

func sell(ticker, quantity, price, date string) model.Transaction {
	return tx(model.Sell, ticker, quantity, price, date)
}

// prices builds a series from alternating date/value strings.
func prices(pairs ...string) model.PriceSeries {
	series := make(model.PriceSeries, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		series = append(series, model.PricePoint{Date: day(pairs[i]), Value: dec(pairs[i+1])})
	}
	return series
}

// scenarioLedger is buy 10 @ 10, buy 10 @ 20, sell 5 @ 25.
func scenarioLedger() []model.Transaction {
	return []model.Transaction{
		buy("PETR4", "10", "10.00", "2023-01-01"),
		buy("PETR4", "10", "20.00", "2023-02-01"),
		sell("PETR4", "5", "25.00", "2023-03-01"),
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("expected %s, got %s %v", want, got.String(), msgAndArgs)
	}
}
