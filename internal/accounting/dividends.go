package accounting

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/model"
)

// DividendAccrual is the income attributed to one dividend event.
type DividendAccrual struct {
	Ticker         string
	ExDate         time.Time
	AmountPerShare decimal.Decimal
	SharesHeld     decimal.Decimal
	Amount         decimal.Decimal
}

// DividendIncome is the dividend income of an owner.
type DividendIncome struct {
	Accruals []DividendAccrual
	ByTicker map[string]decimal.Decimal
	Total    decimal.Decimal
}

// SharesHeldBefore returns buys minus sells of ticker traded strictly before exDate.
// A purchase made on the ex-date itself does not count.
func SharesHeldBefore(txs []model.Transaction, ticker string, exDate time.Time) decimal.Decimal {
	cutoff := DateOf(exDate)
	held := decimal.Zero
	for _, tx := range txs {
		if tx.Ticker != ticker || !DateOf(tx.TradeDate).Before(cutoff) {
			continue
		}
		held = held.Add(signedQuantity(tx))
	}
	return held
}

// AttributeDividends walks every dividend event of history against the share
// count held strictly before its ex-date and accrues shares * amount per share
// whenever that count is positive.
//
// history is keyed by ticker. Dates are compared as calendar dates with time
// and zone stripped. Tickers without transactions contribute nothing.
func AttributeDividends(txs []model.Transaction, history map[string][]model.DividendEvent) DividendIncome {
	income := DividendIncome{
		ByTicker: make(map[string]decimal.Decimal),
		Total:    decimal.Zero,
	}
	grouped := byTicker(chronological(txs))

	for _, ticker := range sortedKeys(history) {
		tickerTxs, ok := grouped[ticker]
		if !ok {
			continue
		}

		events := slices.Clone(history[ticker])
		slices.SortStableFunc(events, func(a, b model.DividendEvent) int {
			return DateOf(a.ExDate).Compare(DateOf(b.ExDate))
		})

		// tickerTxs and events are both ascending, so a single sweep yields
		// the holding strictly before each ex-date.
		held := decimal.Zero
		next := 0
		for _, event := range events {
			exDate := DateOf(event.ExDate)
			for next < len(tickerTxs) && DateOf(tickerTxs[next].TradeDate).Before(exDate) {
				held = held.Add(signedQuantity(tickerTxs[next]))
				next++
			}
			if !held.IsPositive() {
				continue
			}

			amount := held.Mul(event.AmountPerShare)
			income.Accruals = append(income.Accruals, DividendAccrual{
				Ticker:         ticker,
				ExDate:         exDate,
				AmountPerShare: event.AmountPerShare,
				SharesHeld:     held,
				Amount:         amount,
			})
			income.ByTicker[ticker] = income.ByTicker[ticker].Add(amount)
			income.Total = income.Total.Add(amount)
		}
	}

	return income
}

func signedQuantity(tx model.Transaction) decimal.Decimal {
	if tx.Side == model.Sell {
		return tx.Quantity.Neg()
	}
	return tx.Quantity
}
