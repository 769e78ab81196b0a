package accounting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/model"
)

const (
	SeriesPortfolio = "portfolio"
	SeriesCost      = "cost"
)

var hundred = decimal.NewFromInt(100)

// Normalize rescales values so that the first one equals 100:
// v'(t) = 100 * v(t) / v(0).
func Normalize(values []decimal.Decimal) ([]decimal.Decimal, error) {
	if len(values) == 0 {
		return nil, ErrNoSeries
	}
	base := values[0]
	if base.IsZero() {
		return nil, ErrZeroBase
	}
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = v.Mul(hundred).Div(base)
	}
	return out, nil
}

// NormalizedSeries is a base-100 series aligned on the comparison dates.
type NormalizedSeries struct {
	Name   string
	Values []decimal.Decimal
}

// DroppedBenchmark is a requested benchmark left out of a comparison.
type DroppedBenchmark struct {
	Name string
	Err  error
}

// Comparison is the base-100 bundle of the portfolio, its cost and the
// requested benchmarks, all sharing Dates.
type Comparison struct {
	Dates   []time.Time
	Series  map[string]NormalizedSeries
	Order   []string
	Dropped []DroppedBenchmark
}

// Compare builds the base-100 comparison of ps against the requested benchmarks.
//
// The comparison starts on the first date the portfolio has a non-zero market
// value. Each benchmark is re-aligned to that date index by forward-fill then
// backward-fill and normalized against its own first aligned value. A
// benchmark that is absent from benchmarks, has no aligned value, or starts at
// zero is reported in Dropped instead of failing the comparison.
func Compare(ps PortfolioSeries, benchmarks map[string]model.PriceSeries, requested []string) (Comparison, error) {
	start := 0
	for start < ps.Len() && ps.Value[start].IsZero() {
		start++
	}
	if start == ps.Len() {
		return Comparison{}, ErrNoSeries
	}

	cmp := Comparison{
		Dates:  ps.Dates[start:],
		Series: make(map[string]NormalizedSeries),
	}

	portfolio, err := Normalize(ps.Value[start:])
	if err != nil {
		return Comparison{}, fmt.Errorf("normalize portfolio: %w", err)
	}
	cmp.add(SeriesPortfolio, portfolio)

	if cost, err := Normalize(ps.Cost[start:]); err == nil {
		cmp.add(SeriesCost, cost)
	}

	seen := make(map[string]bool)
	for _, name := range requested {
		if seen[name] {
			continue
		}
		seen[name] = true

		series, ok := benchmarks[name]
		if !ok || len(series) == 0 {
			cmp.drop(name, ErrNoPriceData)
			continue
		}

		aligned, ok := alignFillBoth(cmp.Dates, series)
		if !ok {
			cmp.drop(name, ErrNoPriceData)
			continue
		}

		normalized, err := Normalize(aligned)
		if err != nil {
			cmp.drop(name, err)
			continue
		}
		cmp.add(name, normalized)
	}

	return cmp, nil
}

func (c *Comparison) add(name string, values []decimal.Decimal) {
	c.Series[name] = NormalizedSeries{Name: name, Values: values}
	c.Order = append(c.Order, name)
}

func (c *Comparison) drop(name string, cause error) {
	c.Dropped = append(c.Dropped, DroppedBenchmark{
		Name: name,
		Err:  fmt.Errorf("%w: %s: %w", ErrBenchmarkUnavailable, name, cause),
	})
}

// alignFillBoth re-indexes series onto index, forward-filling gaps and then
// back-filling the leading gap with the first aligned value. It reports false
// when no value of series falls on or before the last index date.
func alignFillBoth(index []time.Time, series model.PriceSeries) ([]decimal.Decimal, bool) {
	points := make(model.PriceSeries, 0, len(series))
	for _, p := range series {
		points = append(points, model.PricePoint{Date: DateOf(p.Date), Value: p.Value})
	}
	filled := forwardFill(index, dedupeSorted(points))

	first := -1
	for i, v := range filled {
		if v != nil {
			first = i
			break
		}
	}
	if first < 0 {
		return nil, false
	}

	aligned := make([]decimal.Decimal, len(index))
	for i := range index {
		if i < first {
			aligned[i] = *filled[first]
			continue
		}
		aligned[i] = *filled[i]
	}
	return aligned, true
}
