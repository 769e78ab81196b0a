package accounting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carteira-app/carteira/internal/accounting"
	"github.com/carteira-app/carteira/internal/model"
)

// TestValuate covers marking holdings to market.
//
// WHY: A holding without a quote must not be valued at zero, which would show
// as a total loss; it is flagged and left out of market totals instead.
func TestValuate(t *testing.T) {
	txs := append(scenarioLedger(),
		buy("VALE3", "10", "80", "2023-01-05"),
		buy("WEGE3", "2", "40", "2023-01-05"),
	)
	pos := accounting.Consolidate(txs)
	latest := map[string]decimal.Decimal{
		"PETR4": dec("20"),
		"VALE3": dec("60"),
	}

	v := accounting.Valuate(pos, latest)

	t.Run("totals", func(t *testing.T) {
		assertDecimal(t, "1105", v.Invested) // 225 + 800 + 80
		assertDecimal(t, "900", v.MarketValue)
		assertDecimal(t, "-125", v.Unrealized)
		assertDecimal(t, "75", v.UnrealizedGains)
		assertDecimal(t, "-200", v.UnrealizedLosses)
		assert.Equal(t, []string{"WEGE3"}, v.MissingQuotes)
	})

	t.Run("per holding", func(t *testing.T) {
		require.Len(t, v.Holdings, 3)
		petr := v.Holdings[0]
		assert.Equal(t, "PETR4", petr.Ticker)
		assert.True(t, petr.Quoted)
		assertDecimal(t, "300", petr.MarketValue)
		assertDecimal(t, "75", petr.Unrealized)
		assert.True(t, petr.VariationPercent.Round(4).Equal(dec("33.3333")))
		assert.True(t, petr.Weight.Round(4).Equal(dec("33.3333")))

		wege := v.Holdings[2]
		assert.False(t, wege.Quoted)
		assert.True(t, wege.MarketValue.IsZero())
	})

	t.Run("non-positive quote counts as missing", func(t *testing.T) {
		only := accounting.Consolidate([]model.Transaction{buy("A", "1", "1", "2023-01-01")})
		v := accounting.Valuate(only, map[string]decimal.Decimal{"A": dec("0")})

		assert.Equal(t, []string{"A"}, v.MissingQuotes)
	})
}
