package accounting

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/model"
)

// DailySeries is the position quantity and cumulative cost of one ticker for
// every calendar day from Start, as a step function: a transaction affects its
// own date and every later date.
type DailySeries struct {
	Ticker   string
	Start    time.Time
	Quantity []decimal.Decimal
	Cost     []decimal.Decimal
}

// Len returns the number of days covered.
func (s *DailySeries) Len() int {
	return len(s.Quantity)
}

// Date returns the calendar date of day i.
func (s *DailySeries) Date(i int) time.Time {
	return s.Start.AddDate(0, 0, i)
}

// At returns the quantity and cost in effect on date. Dates before Start are
// zero; dates after the last day hold the last value.
func (s *DailySeries) At(date time.Time) (decimal.Decimal, decimal.Decimal) {
	i := daysBetween(s.Start, date)
	if i < 0 || s.Len() == 0 {
		return decimal.Zero, decimal.Zero
	}
	if i >= s.Len() {
		i = s.Len() - 1
	}
	return s.Quantity[i], s.Cost[i]
}

// runningCost tracks a chronological replay of a ticker's ledger.
// The average cost changes on buys only and is consumed by sells.
type runningCost struct {
	quantity decimal.Decimal
	cost     decimal.Decimal
}

func (r *runningCost) buy(quantity, price decimal.Decimal) decimal.Decimal {
	added := quantity.Mul(price)
	r.quantity = r.quantity.Add(quantity)
	r.cost = r.cost.Add(added)
	return added
}

// sell removes quantity * cost / held. A sell of everything held (or more)
// removes the whole remaining cost, so no division remainder is left behind.
func (r *runningCost) sell(quantity decimal.Decimal) decimal.Decimal {
	removed := decimal.Zero
	switch {
	case !r.quantity.IsPositive():
	case quantity.GreaterThanOrEqual(r.quantity):
		removed = r.cost
	default:
		removed = quantity.Mul(r.cost).Div(r.quantity)
	}
	r.quantity = r.quantity.Sub(quantity)
	r.cost = r.cost.Sub(removed)
	return removed
}

// BuildDailySeries reconstructs per-ticker daily position and cost series over
// every calendar day of [start, end].
//
// Each transaction contributes a delta on its own day; a prefix sum then
// spreads it to every later day. On a sell the cost removed is the quantity
// times the running average cost at that moment of the replay. Transactions
// dated before start take effect on start; those after end are ignored.
func BuildDailySeries(txs []model.Transaction, start, end time.Time) map[string]*DailySeries {
	start, end = DateOf(start), DateOf(end)
	days := daysBetween(start, end) + 1
	result := make(map[string]*DailySeries)
	if days <= 0 {
		return result
	}

	for ticker, tickerTxs := range byTicker(chronological(txs)) {
		quantity := make([]decimal.Decimal, days)
		cost := make([]decimal.Decimal, days)
		var running runningCost

		for _, tx := range tickerTxs {
			var dq, dc decimal.Decimal
			switch tx.Side {
			case model.Buy:
				dc = running.buy(tx.Quantity, tx.UnitPrice)
				dq = tx.Quantity
			case model.Sell:
				dc = running.sell(tx.Quantity).Neg()
				dq = tx.Quantity.Neg()
			default:
				continue
			}

			day := max(daysBetween(start, tx.TradeDate), 0)
			if day >= days {
				continue
			}
			quantity[day] = quantity[day].Add(dq)
			cost[day] = cost[day].Add(dc)
		}

		for i := 1; i < days; i++ {
			quantity[i] = quantity[i].Add(quantity[i-1])
			cost[i] = cost[i].Add(cost[i-1])
		}

		result[ticker] = &DailySeries{
			Ticker:   ticker,
			Start:    start,
			Quantity: quantity,
			Cost:     cost,
		}
	}

	return result
}

// PortfolioSeries is the portfolio market value and cost aligned on the
// trading dates of the price feed.
type PortfolioSeries struct {
	Dates []time.Time
	Value []decimal.Decimal
	Cost  []decimal.Decimal
	// MissingPrices lists tickers for which the feed had no price in range.
	// They are excluded from Value; their cost is still part of Cost.
	MissingPrices []string
}

// Len returns the number of dates in the series.
func (p PortfolioSeries) Len() int {
	return len(p.Dates)
}

// Reconstruct replays the ledger over [first transaction date, today] and
// combines it with the daily closing prices of every ticker.
//
// Position and cost are aligned to the union of the feed's trading dates
// (forward-filled from the calendar series, zero before the first
// transaction). Market value is quantity * price per ticker, summed across
// tickers; cost is summed across tickers. Leading dates where both value and
// cost are exactly zero are dropped.
//
// Errors: ErrEmptyLedger for an empty ledger, ErrNoSeries (wrapping
// ErrNoPriceData when the feed had nothing at all) when no series can be built.
func Reconstruct(txs []model.Transaction, prices map[string]model.PriceSeries, today time.Time) (PortfolioSeries, error) {
	start, ok := FirstTradeDate(txs)
	if !ok {
		return PortfolioSeries{}, ErrEmptyLedger
	}
	end := DateOf(today)
	if start.After(end) {
		return PortfolioSeries{}, fmt.Errorf("%w: first transaction %s is after %s",
			ErrNoSeries, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	daily := BuildDailySeries(txs, start, end)
	tickers := sortedKeys(daily)

	result := PortfolioSeries{}
	quoted := make(map[string]model.PriceSeries, len(tickers))
	for _, ticker := range tickers {
		series := cleanSeries(prices[ticker], start, end)
		if len(series) == 0 {
			result.MissingPrices = append(result.MissingPrices, ticker)
			continue
		}
		quoted[ticker] = series
	}
	if len(quoted) == 0 {
		return result, fmt.Errorf("%w: %w", ErrNoSeries, ErrNoPriceData)
	}

	index := unionDates(quoted)
	value := make([]decimal.Decimal, len(index))
	cost := make([]decimal.Decimal, len(index))

	for _, ticker := range tickers {
		series := daily[ticker]
		closes := forwardFill(index, quoted[ticker])
		for i, date := range index {
			quantity, tickerCost := series.At(date)
			cost[i] = cost[i].Add(tickerCost)
			if closes != nil && closes[i] != nil {
				value[i] = value[i].Add(quantity.Mul(*closes[i]))
			}
		}
	}

	first := 0
	for first < len(index) && value[first].IsZero() && cost[first].IsZero() {
		first++
	}
	if first == len(index) {
		return result, ErrNoSeries
	}

	result.Dates = index[first:]
	result.Value = value[first:]
	result.Cost = cost[first:]

	return result, nil
}

// cleanSeries returns the points of series within [start, end] with dates
// stripped to calendar days, sorted ascending, one point per day (last wins).
// Non-positive values are treated as missing quotes.
func cleanSeries(series model.PriceSeries, start, end time.Time) model.PriceSeries {
	if len(series) == 0 {
		return nil
	}
	cleaned := make(model.PriceSeries, 0, len(series))
	for _, p := range series {
		date := DateOf(p.Date)
		if date.Before(start) || date.After(end) || !p.Value.IsPositive() {
			continue
		}
		cleaned = append(cleaned, model.PricePoint{Date: date, Value: p.Value})
	}
	return dedupeSorted(cleaned)
}

func dedupeSorted(series model.PriceSeries) model.PriceSeries {
	slices.SortStableFunc(series, func(a, b model.PricePoint) int {
		return a.Date.Compare(b.Date)
	})
	out := series[:0]
	for _, p := range series {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

// unionDates returns the sorted union of the dates of every series.
func unionDates(series map[string]model.PriceSeries) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, s := range series {
		for _, p := range s {
			if !seen[p.Date] {
				seen[p.Date] = true
				dates = append(dates, p.Date)
			}
		}
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return dates
}

// forwardFill aligns series on index: each index date takes the last value
// dated on or before it, or nil if the series has not started yet.
// series must be sorted ascending.
func forwardFill(index []time.Time, series model.PriceSeries) []*decimal.Decimal {
	if len(series) == 0 {
		return nil
	}
	aligned := make([]*decimal.Decimal, len(index))
	next := 0
	var last *decimal.Decimal
	for i, date := range index {
		for next < len(series) && !series[next].Date.After(date) {
			v := series[next].Value
			last = &v
			next++
		}
		aligned[i] = last
	}
	return aligned
}
