package accounting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/model"
)

// RealizedEvent is the outcome of a single sell.
//
// When Available is false the ticker had no cost basis; CostRemoved and Gain
// are zero and the event contributes nothing to the aggregates.
type RealizedEvent struct {
	TransactionID string
	Ticker        string
	TradeDate     time.Time
	Quantity      decimal.Decimal
	Proceeds      decimal.Decimal
	CostRemoved   decimal.Decimal
	Gain          decimal.Decimal
	Available     bool
}

// Realized aggregates realized results. Gains is always >= 0 and Losses <= 0;
// they are never netted so callers can render them separately.
type Realized struct {
	Events      []RealizedEvent
	Gains       decimal.Decimal
	Losses      decimal.Decimal
	Unavailable []string
}

// Net returns the total net realized P&L.
func (r Realized) Net() decimal.Decimal {
	return r.Gains.Add(r.Losses)
}

// Realize computes realized P&L for every sell of the ledger.
//
// The cost removed by a sell is quantity * the all-time weighted average cost
// of the ticker taken from bought, regardless of when the sell happened. A
// ticker absent from bought is reported in Unavailable.
func Realize(txs []model.Transaction, bought map[string]BuyStats) Realized {
	result := Realized{
		Gains:  decimal.Zero,
		Losses: decimal.Zero,
	}
	unavailable := make(map[string]bool)

	for _, tx := range chronological(txs) {
		if tx.Side != model.Sell {
			continue
		}

		event := RealizedEvent{
			TransactionID: tx.ID,
			Ticker:        tx.Ticker,
			TradeDate:     DateOf(tx.TradeDate),
			Quantity:      tx.Quantity,
			Proceeds:      tx.Amount(),
		}

		stats := bought[tx.Ticker]
		if !stats.Quantity.IsPositive() {
			unavailable[tx.Ticker] = true
			result.Events = append(result.Events, event)
			continue
		}

		event.Available = true
		event.CostRemoved = tx.Quantity.Mul(stats.Cost).Div(stats.Quantity)
		event.Gain = event.Proceeds.Sub(event.CostRemoved)
		result.Events = append(result.Events, event)

		switch {
		case event.Gain.IsPositive():
			result.Gains = result.Gains.Add(event.Gain)
		case event.Gain.IsNegative():
			result.Losses = result.Losses.Add(event.Gain)
		}
	}

	result.Unavailable = sortedKeys(unavailable)

	return result
}
