package accounting_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carteira-app/carteira/internal/accounting"
	"github.com/carteira-app/carteira/internal/model"
)

// TestBuildDailySeries covers the calendar-day position and cost reconstruction.
//
// WHY: The prefix-sum must produce exactly the step function a per-day replay
// would, and the cost removed by sells follows the running average at the
// moment of the sale, which differs from the realized P&L average.
func TestBuildDailySeries(t *testing.T) {
	t.Run("step function over every calendar day", func(t *testing.T) {
		txs := []model.Transaction{
			buy("PETR4", "10", "10", "2023-01-02"),
			sell("PETR4", "4", "12", "2023-01-04"),
			buy("PETR4", "6", "20", "2023-01-06"),
		}
		series := accounting.BuildDailySeries(txs, day("2023-01-02"), day("2023-01-07"))

		require.Contains(t, series, "PETR4")
		s := series["PETR4"]
		require.Equal(t, 6, s.Len())
		wantQty := []string{"10", "10", "6", "6", "12", "12"}
		// sell removes 4 * running average 10 = 40; buy adds 120
		wantCost := []string{"100", "100", "60", "60", "180", "180"}
		for i := range wantQty {
			assertDecimal(t, wantQty[i], s.Quantity[i], s.Date(i))
			assertDecimal(t, wantCost[i], s.Cost[i], s.Date(i))
		}
	})

	t.Run("running average is taken at the time of each sale", func(t *testing.T) {
		txs := []model.Transaction{
			buy("A", "10", "10", "2023-01-01"),
			sell("A", "5", "50", "2023-01-02"),
			buy("A", "5", "30", "2023-01-03"),
			sell("A", "5", "50", "2023-01-04"),
		}
		s := accounting.BuildDailySeries(txs, day("2023-01-01"), day("2023-01-04"))["A"]

		// 100 -> 50 -> 200 (avg 20) -> 100
		assertDecimal(t, "50", s.Cost[1])
		assertDecimal(t, "200", s.Cost[2])
		assertDecimal(t, "100", s.Cost[3])
		assertDecimal(t, "5", s.Quantity[3])
	})

	t.Run("same-day transactions follow ledger order", func(t *testing.T) {
		// on the 2nd: sell first at average 10, then buy at 20
		sellFirst := []model.Transaction{
			buy("A", "10", "10", "2023-01-01"),
			sell("A", "5", "15", "2023-01-02"),
			buy("A", "10", "20", "2023-01-02"),
		}
		// on the 2nd: buy first (average 300/20 = 15), then sell
		buyFirst := []model.Transaction{
			buy("A", "10", "10", "2023-01-01"),
			buy("A", "10", "20", "2023-01-02"),
			sell("A", "5", "15", "2023-01-02"),
		}

		s1 := accounting.BuildDailySeries(sellFirst, day("2023-01-01"), day("2023-01-02"))["A"]
		s2 := accounting.BuildDailySeries(buyFirst, day("2023-01-01"), day("2023-01-02"))["A"]

		assertDecimal(t, "15", s1.Quantity[1])
		assertDecimal(t, "15", s2.Quantity[1])
		assertDecimal(t, "250", s1.Cost[1])
		assertDecimal(t, "225", s2.Cost[1])
	})

	t.Run("full exit leaves no residual cost", func(t *testing.T) {
		txs := []model.Transaction{
			buy("A", "1", "10", "2023-01-01"),
			buy("A", "2", "11", "2023-01-02"),
			sell("A", "3", "12", "2023-01-03"),
		}
		s := accounting.BuildDailySeries(txs, day("2023-01-01"), day("2023-01-03"))["A"]

		assertDecimal(t, "0", s.Quantity[2])
		assert.True(t, s.Cost[2].IsZero(), "residual cost %s", s.Cost[2])
	})

	t.Run("matches a per-day replay", func(t *testing.T) {
		txs := []model.Transaction{
			buy("A", "3", "7.5", "2023-01-03"),
			buy("B", "2", "11", "2023-01-01"),
			sell("A", "1", "9", "2023-01-03"),
			buy("A", "4", "8", "2023-01-08"),
			sell("B", "2", "12", "2023-01-10"),
		}
		start, end := day("2023-01-01"), day("2023-01-12")
		series := accounting.BuildDailySeries(txs, start, end)

		for _, ticker := range []string{"A", "B"} {
			s := series[ticker]
			for i := 0; i < s.Len(); i++ {
				date := s.Date(i)
				held := decimal.Zero
				for _, tx := range accounting.UpTo(txs, date) {
					if tx.Ticker != ticker {
						continue
					}
					if tx.Side == model.Buy {
						held = held.Add(tx.Quantity)
					} else {
						held = held.Sub(tx.Quantity)
					}
				}
				assert.True(t, held.Equal(s.Quantity[i]), "%s on %s: want %s got %s", ticker, date, held, s.Quantity[i])
			}
		}
	})

	t.Run("lookups outside the range", func(t *testing.T) {
		txs := []model.Transaction{buy("A", "1", "10", "2023-01-02")}
		s := accounting.BuildDailySeries(txs, day("2023-01-02"), day("2023-01-03"))["A"]

		q, c := s.At(day("2023-01-01"))
		assert.True(t, q.IsZero())
		assert.True(t, c.IsZero())

		q, c = s.At(day("2023-02-01"))
		assertDecimal(t, "1", q)
		assertDecimal(t, "10", c)
	})

	t.Run("transactions after the range are ignored", func(t *testing.T) {
		txs := []model.Transaction{
			buy("A", "1", "10", "2023-01-02"),
			buy("A", "1", "10", "2023-02-02"),
		}
		s := accounting.BuildDailySeries(txs, day("2023-01-02"), day("2023-01-05"))["A"]

		assertDecimal(t, "1", s.Quantity[s.Len()-1])
	})
}

// TestReconstruct covers the portfolio value/cost series on trading dates.
//
// WHY: The evolution chart must never be zero-filled when quotes are missing,
// and the first plotted date must be the first date with something invested.
func TestReconstruct(t *testing.T) {
	t.Run("value and cost aligned on trading dates", func(t *testing.T) {
		txs := []model.Transaction{
			buy("PETR4", "10", "10", "2023-01-02"),
			sell("PETR4", "5", "12", "2023-01-04"),
		}
		feed := map[string]model.PriceSeries{
			"PETR4": prices("2023-01-02", "10", "2023-01-03", "11", "2023-01-05", "12"),
		}
		ps, err := accounting.Reconstruct(txs, feed, day("2023-01-06"))
		require.NoError(t, err)

		require.Equal(t, 3, ps.Len())
		assert.Equal(t, day("2023-01-05"), ps.Dates[2])
		for i, want := range []string{"100", "110", "60"} {
			assertDecimal(t, want, ps.Value[i])
		}
		for i, want := range []string{"100", "100", "50"} {
			assertDecimal(t, want, ps.Cost[i])
		}
		assert.Empty(t, ps.MissingPrices)
	})

	t.Run("prices are forward-filled across tickers", func(t *testing.T) {
		txs := []model.Transaction{
			buy("A", "1", "10", "2023-01-02"),
			buy("B", "2", "5", "2023-01-02"),
		}
		feed := map[string]model.PriceSeries{
			"A": prices("2023-01-02", "10", "2023-01-03", "11"),
			"B": prices("2023-01-02", "5", "2023-01-04", "6"),
		}
		ps, err := accounting.Reconstruct(txs, feed, day("2023-01-04"))
		require.NoError(t, err)

		require.Equal(t, 3, ps.Len())
		assertDecimal(t, "20", ps.Value[0])
		assertDecimal(t, "21", ps.Value[1])
		assertDecimal(t, "23", ps.Value[2])
	})

	t.Run("leading zero run is dropped", func(t *testing.T) {
		txs := []model.Transaction{
			buy("A", "5", "10", "2023-01-02"),
			sell("A", "5", "10", "2023-01-02"),
			buy("A", "1", "10", "2023-01-05"),
		}
		feed := map[string]model.PriceSeries{
			"A": prices("2023-01-02", "10", "2023-01-03", "10", "2023-01-05", "10"),
		}
		ps, err := accounting.Reconstruct(txs, feed, day("2023-01-05"))
		require.NoError(t, err)

		require.Equal(t, 1, ps.Len())
		assert.Equal(t, day("2023-01-05"), ps.Dates[0])
	})

	t.Run("ticker without quotes keeps its cost and is flagged", func(t *testing.T) {
		txs := []model.Transaction{
			buy("A", "1", "10", "2023-01-02"),
			buy("B", "1", "7", "2023-01-02"),
		}
		feed := map[string]model.PriceSeries{
			"A": prices("2023-01-02", "10"),
		}
		ps, err := accounting.Reconstruct(txs, feed, day("2023-01-02"))
		require.NoError(t, err)

		assert.Equal(t, []string{"B"}, ps.MissingPrices)
		assertDecimal(t, "10", ps.Value[0])
		assertDecimal(t, "17", ps.Cost[0])
	})

	t.Run("no price data yields no series", func(t *testing.T) {
		txs := []model.Transaction{buy("A", "1", "10", "2023-01-02")}
		_, err := accounting.Reconstruct(txs, map[string]model.PriceSeries{}, day("2023-01-10"))

		assert.True(t, errors.Is(err, accounting.ErrNoSeries))
		assert.True(t, errors.Is(err, accounting.ErrNoPriceData))
	})

	t.Run("prices outside the range are ignored", func(t *testing.T) {
		txs := []model.Transaction{buy("A", "1", "10", "2023-01-02")}
		feed := map[string]model.PriceSeries{
			"A": prices("2022-12-30", "9", "2023-01-20", "12"),
		}
		_, err := accounting.Reconstruct(txs, feed, day("2023-01-10"))

		assert.True(t, errors.Is(err, accounting.ErrNoPriceData))
	})

	t.Run("empty ledger", func(t *testing.T) {
		_, err := accounting.Reconstruct(nil, nil, day("2023-01-10"))

		assert.True(t, errors.Is(err, accounting.ErrEmptyLedger))
	})

	t.Run("idempotent", func(t *testing.T) {
		txs := scenarioLedger()
		feed := map[string]model.PriceSeries{
			"PETR4": prices("2023-01-02", "10", "2023-02-01", "19", "2023-03-01", "24", "2023-03-02", "26"),
		}
		first, err := accounting.Reconstruct(txs, feed, day("2023-03-10"))
		require.NoError(t, err)
		second, err := accounting.Reconstruct(txs, feed, day("2023-03-10"))
		require.NoError(t, err)

		require.Equal(t, first.Dates, second.Dates)
		for i := range first.Value {
			assert.True(t, first.Value[i].Equal(second.Value[i]))
			assert.True(t, first.Cost[i].Equal(second.Cost[i]))
		}
	})
}
