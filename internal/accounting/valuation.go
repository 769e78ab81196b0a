package accounting

import (
	"github.com/shopspring/decimal"
)

// Valuation is a holding marked to its latest market price.
// Market fields are only meaningful when Quoted is true.
type Valuation struct {
	Holding
	Quoted           bool
	Price            decimal.Decimal
	MarketValue      decimal.Decimal
	Unrealized       decimal.Decimal
	VariationPercent decimal.Decimal
	Weight           decimal.Decimal
}

// PortfolioValuation is the mark-to-market of all current holdings.
type PortfolioValuation struct {
	Holdings         []Valuation
	Invested         decimal.Decimal
	MarketValue      decimal.Decimal
	Unrealized       decimal.Decimal
	UnrealizedGains  decimal.Decimal
	UnrealizedLosses decimal.Decimal
	MissingQuotes    []string
}

// Valuate marks every holding of pos to its price in latest.
//
// A holding without a positive quote is excluded from market value and
// unrealized totals and listed in MissingQuotes; its cost still counts towards
// Invested. Weight is the holding's share of the total quoted market value.
func Valuate(pos Position, latest map[string]decimal.Decimal) PortfolioValuation {
	v := PortfolioValuation{
		Invested:         decimal.Zero,
		MarketValue:      decimal.Zero,
		Unrealized:       decimal.Zero,
		UnrealizedGains:  decimal.Zero,
		UnrealizedLosses: decimal.Zero,
	}

	for _, ticker := range pos.Tickers() {
		h := pos.Holdings[ticker]
		cost := h.Cost()
		v.Invested = v.Invested.Add(cost)

		val := Valuation{Holding: h}
		price, ok := latest[ticker]
		if !ok || !price.IsPositive() {
			v.MissingQuotes = append(v.MissingQuotes, ticker)
			v.Holdings = append(v.Holdings, val)
			continue
		}

		val.Quoted = true
		val.Price = price
		val.MarketValue = h.Quantity.Mul(price)
		val.Unrealized = val.MarketValue.Sub(cost)

		divisor := cost
		if divisor.IsZero() {
			divisor = decimal.NewFromInt(1)
		}
		val.VariationPercent = val.Unrealized.Div(divisor).Mul(hundred)

		v.MarketValue = v.MarketValue.Add(val.MarketValue)
		v.Unrealized = v.Unrealized.Add(val.Unrealized)
		switch {
		case val.Unrealized.IsPositive():
			v.UnrealizedGains = v.UnrealizedGains.Add(val.Unrealized)
		case val.Unrealized.IsNegative():
			v.UnrealizedLosses = v.UnrealizedLosses.Add(val.Unrealized)
		}
		v.Holdings = append(v.Holdings, val)
	}

	if v.MarketValue.IsPositive() {
		for i := range v.Holdings {
			if v.Holdings[i].Quoted {
				v.Holdings[i].Weight = v.Holdings[i].MarketValue.Div(v.MarketValue).Mul(hundred)
			}
		}
	}

	return v
}
