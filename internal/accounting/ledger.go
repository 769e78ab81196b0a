package accounting

import (
	"slices"
	"time"

	"github.com/carteira-app/carteira/internal/model"
)

// DateOf strips the time of day and zone from t, keeping the calendar day
// as seen in t's own location, and returns it at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of calendar days from -> to.
func daysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)) / (24 * time.Hour))
}

// chronological returns a copy of txs ordered by trade date.
// Same-day transactions keep their ledger order.
func chronological(txs []model.Transaction) []model.Transaction {
	ordered := slices.Clone(txs)
	slices.SortStableFunc(ordered, func(a, b model.Transaction) int {
		return DateOf(a.TradeDate).Compare(DateOf(b.TradeDate))
	})
	return ordered
}

// byTicker groups transactions by ticker, preserving their relative order.
func byTicker(txs []model.Transaction) map[string][]model.Transaction {
	grouped := make(map[string][]model.Transaction)
	for _, tx := range txs {
		grouped[tx.Ticker] = append(grouped[tx.Ticker], tx)
	}
	return grouped
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// FirstTradeDate returns the calendar date of the earliest transaction.
// The second return value is false for an empty ledger.
func FirstTradeDate(txs []model.Transaction) (time.Time, bool) {
	if len(txs) == 0 {
		return time.Time{}, false
	}
	first := DateOf(txs[0].TradeDate)
	for _, tx := range txs[1:] {
		if d := DateOf(tx.TradeDate); d.Before(first) {
			first = d
		}
	}
	return first, true
}

// UpTo returns the transactions traded on or before date.
func UpTo(txs []model.Transaction, date time.Time) []model.Transaction {
	limit := DateOf(date)
	kept := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !DateOf(tx.TradeDate).After(limit) {
			kept = append(kept, tx)
		}
	}
	return kept
}

// Tickers returns the distinct tickers of the ledger, sorted.
func Tickers(txs []model.Transaction) []string {
	return sortedKeys(byTicker(txs))
}
