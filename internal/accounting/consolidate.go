package accounting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/model"
)

// Epsilon is the quantity at or under which a holding is treated as fully exited.
var Epsilon = decimal.New(1, -5)

// BuyStats aggregates every buy of a ticker across the whole ledger.
type BuyStats struct {
	Quantity decimal.Decimal
	Cost     decimal.Decimal
}

// AverageCost returns the all-time weighted average cost: Cost / Quantity.
// The second return value is false when nothing was bought.
func (b BuyStats) AverageCost() (decimal.Decimal, bool) {
	if !b.Quantity.IsPositive() {
		return decimal.Zero, false
	}
	return b.Cost.Div(b.Quantity), true
}

// Holding is a ticker currently held, valued at its all-time weighted average cost.
type Holding struct {
	Ticker      string
	Quantity    decimal.Decimal
	AverageCost decimal.Decimal
}

// Cost returns the aggregate cost of the holding.
func (h Holding) Cost() decimal.Decimal {
	return h.Quantity.Mul(h.AverageCost)
}

// Oversell is a sell that exceeded the quantity held when it was traded.
type Oversell struct {
	TransactionID string
	Ticker        string
	TradeDate     time.Time
	Requested     decimal.Decimal
	Available     decimal.Decimal
}

// Err describes the oversell as an error wrapping ErrOversell.
func (o Oversell) Err() error {
	return fmt.Errorf("%w: %s sold %s with %s held on %s",
		ErrOversell, o.Ticker, o.Requested, o.Available, o.TradeDate.Format(time.DateOnly))
}

// Position is the consolidated view of a ledger.
//
// Holdings only contains tickers whose quantity held is above Epsilon. Bought
// keeps the buy statistics of every ticker ever bought, including fully exited
// ones, because realized results are computed from them.
type Position struct {
	Holdings         map[string]Holding
	Bought           map[string]BuyStats
	Sold             map[string]decimal.Decimal
	MissingCostBasis []string
	Oversells        []Oversell
}

// Tickers returns the currently held tickers, sorted.
func (p Position) Tickers() []string {
	return sortedKeys(p.Holdings)
}

// AverageCost returns the all-time weighted average cost of ticker, or
// ErrMissingCostBasis if it was never bought.
func (p Position) AverageCost(ticker string) (decimal.Decimal, error) {
	avg, ok := p.Bought[ticker].AverageCost()
	if !ok {
		return decimal.Zero, ErrMissingCostBasis
	}
	return avg, nil
}

// Consolidate collapses a ledger into current holdings.
//
// Buys are grouped per ticker to obtain the weighted average cost
// (total cost / total quantity). Sells only reduce the quantity held; they
// never change the average cost. A ticker sold without any buy is listed in
// MissingCostBasis. Sells exceeding the quantity held at their trade date are
// listed in Oversells instead of being rejected.
func Consolidate(txs []model.Transaction) Position {
	pos := Position{
		Holdings: make(map[string]Holding),
		Bought:   make(map[string]BuyStats),
		Sold:     make(map[string]decimal.Decimal),
	}

	for _, tx := range txs {
		switch tx.Side {
		case model.Buy:
			stats := pos.Bought[tx.Ticker]
			stats.Quantity = stats.Quantity.Add(tx.Quantity)
			stats.Cost = stats.Cost.Add(tx.Amount())
			pos.Bought[tx.Ticker] = stats
		case model.Sell:
			pos.Sold[tx.Ticker] = pos.Sold[tx.Ticker].Add(tx.Quantity)
		}
	}

	for _, ticker := range sortedKeys(pos.Sold) {
		if _, ok := pos.Bought[ticker]; !ok {
			pos.MissingCostBasis = append(pos.MissingCostBasis, ticker)
		}
	}

	for ticker, stats := range pos.Bought {
		held := stats.Quantity.Sub(pos.Sold[ticker])
		if held.LessThanOrEqual(Epsilon) {
			continue
		}
		avg, _ := stats.AverageCost()
		pos.Holdings[ticker] = Holding{
			Ticker:      ticker,
			Quantity:    held,
			AverageCost: avg,
		}
	}

	pos.Oversells = DetectOversells(txs)

	return pos
}

// DetectOversells replays the ledger chronologically and reports every sell
// whose quantity exceeds the quantity held at that point.
func DetectOversells(txs []model.Transaction) []Oversell {
	var oversells []Oversell
	held := make(map[string]decimal.Decimal)

	for _, tx := range chronological(txs) {
		current := held[tx.Ticker]
		switch tx.Side {
		case model.Buy:
			held[tx.Ticker] = current.Add(tx.Quantity)
		case model.Sell:
			if tx.Quantity.Sub(current).GreaterThan(Epsilon) {
				oversells = append(oversells, Oversell{
					TransactionID: tx.ID,
					Ticker:        tx.Ticker,
					TradeDate:     DateOf(tx.TradeDate),
					Requested:     tx.Quantity,
					Available:     decimal.Max(current, decimal.Zero),
				})
			}
			held[tx.Ticker] = current.Sub(tx.Quantity)
		}
	}

	return oversells
}
