package accounting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carteira-app/carteira/internal/accounting"
	"github.com/carteira-app/carteira/internal/model"
)

func dividend(ticker, exDate, amount string) model.DividendEvent {
	return model.DividendEvent{Ticker: ticker, ExDate: day(exDate), AmountPerShare: dec(amount)}
}

// TestAttributeDividends covers dividend attribution by ex-date.
//
// WHY: Attributing a dividend to shares bought on or after the ex-date is the
// classic silent error of this computation. The boundary must be strict.
func TestAttributeDividends(t *testing.T) {
	t.Run("reference scenario", func(t *testing.T) {
		history := map[string][]model.DividendEvent{
			"PETR4": {dividend("PETR4", "2023-02-15", "1.00")},
		}
		income := accounting.AttributeDividends(scenarioLedger(), history)

		require.Len(t, income.Accruals, 1)
		assertDecimal(t, "20", income.Accruals[0].SharesHeld)
		assertDecimal(t, "20", income.Total)
		assertDecimal(t, "20", income.ByTicker["PETR4"])
	})

	t.Run("buy on the ex-date does not qualify", func(t *testing.T) {
		txs := []model.Transaction{buy("TAEE11", "100", "35", "2023-05-10")}
		history := map[string][]model.DividendEvent{
			"TAEE11": {dividend("TAEE11", "2023-05-10", "0.50")},
		}
		income := accounting.AttributeDividends(txs, history)

		assert.Empty(t, income.Accruals)
		assertDecimal(t, "0", income.Total)
	})

	t.Run("buy one day before the ex-date qualifies in full", func(t *testing.T) {
		txs := []model.Transaction{buy("TAEE11", "100", "35", "2023-05-09")}
		history := map[string][]model.DividendEvent{
			"TAEE11": {dividend("TAEE11", "2023-05-10", "0.50")},
		}
		income := accounting.AttributeDividends(txs, history)

		assertDecimal(t, "50", income.Total)
	})

	t.Run("feed timestamps with zone and time are compared as dates", func(t *testing.T) {
		brt := time.FixedZone("BRT", -3*60*60)
		txs := []model.Transaction{buy("TAEE11", "100", "35", "2023-05-10")}
		history := map[string][]model.DividendEvent{
			"TAEE11": {{
				Ticker:         "TAEE11",
				ExDate:         time.Date(2023, 5, 10, 23, 30, 0, 0, brt),
				AmountPerShare: dec("0.50"),
			}},
		}
		income := accounting.AttributeDividends(txs, history)

		assertDecimal(t, "0", income.Total)
	})

	t.Run("sells before the ex-date reduce entitled shares", func(t *testing.T) {
		txs := []model.Transaction{
			buy("ITUB4", "100", "25", "2023-01-02"),
			sell("ITUB4", "40", "27", "2023-03-01"),
			sell("ITUB4", "60", "28", "2023-04-03"),
		}
		history := map[string][]model.DividendEvent{
			"ITUB4": {
				dividend("ITUB4", "2023-04-03", "0.10"),
				dividend("ITUB4", "2023-02-01", "0.20"),
				dividend("ITUB4", "2023-05-01", "0.30"),
			},
		}
		income := accounting.AttributeDividends(txs, history)

		require.Len(t, income.Accruals, 2)
		assertDecimal(t, "100", income.Accruals[0].SharesHeld)
		assertDecimal(t, "60", income.Accruals[1].SharesHeld)
		assertDecimal(t, "26", income.Total)
	})

	t.Run("tickers are attributed independently and summed", func(t *testing.T) {
		txs := []model.Transaction{
			buy("A", "10", "1", "2023-01-01"),
			buy("B", "5", "1", "2023-01-01"),
		}
		history := map[string][]model.DividendEvent{
			"A": {dividend("A", "2023-02-01", "1")},
			"B": {dividend("B", "2023-02-01", "2")},
			"C": {dividend("C", "2023-02-01", "9")},
		}
		income := accounting.AttributeDividends(txs, history)

		assertDecimal(t, "10", income.ByTicker["A"])
		assertDecimal(t, "10", income.ByTicker["B"])
		assert.NotContains(t, income.ByTicker, "C")
		assertDecimal(t, "20", income.Total)
	})

	t.Run("matches the direct share count", func(t *testing.T) {
		txs := scenarioLedger()
		ex := day("2023-03-02")
		history := map[string][]model.DividendEvent{
			"PETR4": {{Ticker: "PETR4", ExDate: ex, AmountPerShare: dec("1")}},
		}
		income := accounting.AttributeDividends(txs, history)

		assert.True(t, income.Total.Equal(accounting.SharesHeldBefore(txs, "PETR4", ex)))
		assertDecimal(t, "15", income.Total)
	})
}
