package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/model"
)

// FakeMarketData is an in-memory implementation of service.MarketData.
// Missing entries behave like an upstream without data: empty series, no
// dividends and apperrors.ErrSymbolNotFound for quotes.
// It is safe for concurrent use.
type FakeMarketData struct {
	mu sync.Mutex

	Prices     map[string]model.PriceSeries
	Latest     map[string]decimal.Decimal
	Dividends  map[string][]model.DividendEvent
	Benchmarks map[string]model.PriceSeries
	// Errors makes every call for the key (ticker or benchmark name) fail.
	Errors map[string]error

	Calls int
}

// NewFakeMarketData creates an empty FakeMarketData.
func NewFakeMarketData() *FakeMarketData {
	return &FakeMarketData{
		Prices:     make(map[string]model.PriceSeries),
		Latest:     make(map[string]decimal.Decimal),
		Dividends:  make(map[string][]model.DividendEvent),
		Benchmarks: make(map[string]model.PriceSeries),
		Errors:     make(map[string]error),
	}
}

// WithPrices sets the daily closes of ticker from date/value pairs
// ("2023-01-02", "10.5", ...). The last pair is also the latest quote.
func (f *FakeMarketData) WithPrices(ticker string, pairs ...string) *FakeMarketData {
	f.Prices[ticker] = Series(pairs...)
	if n := len(f.Prices[ticker]); n > 0 {
		f.Latest[ticker] = f.Prices[ticker][n-1].Value
	}
	return f
}

// WithLatest sets only the latest quote of ticker.
func (f *FakeMarketData) WithLatest(ticker, price string) *FakeMarketData {
	f.Latest[ticker] = decimal.RequireFromString(price)
	return f
}

// WithDividend adds a dividend of ticker.
func (f *FakeMarketData) WithDividend(ticker, exDate, amount string) *FakeMarketData {
	f.Dividends[ticker] = append(f.Dividends[ticker], model.DividendEvent{
		Ticker:         ticker,
		ExDate:         Date(exDate),
		AmountPerShare: decimal.RequireFromString(amount),
	})
	return f
}

// WithBenchmark sets the series of a catalog benchmark from date/value pairs.
func (f *FakeMarketData) WithBenchmark(name string, pairs ...string) *FakeMarketData {
	f.Benchmarks[name] = Series(pairs...)
	return f
}

// WithError makes every call for key fail with err.
func (f *FakeMarketData) WithError(key string, err error) *FakeMarketData {
	f.Errors[key] = err
	return f
}

func (f *FakeMarketData) call(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	return f.Errors[key]
}

// DailyPrices returns the closes of ticker within [start, end].
func (f *FakeMarketData) DailyPrices(_ context.Context, ticker string, start, end time.Time) (model.PriceSeries, error) {
	if err := f.call(ticker); err != nil {
		return nil, err
	}
	return within(f.Prices[ticker], start, end), nil
}

// LatestPrice returns the latest quote of ticker.
func (f *FakeMarketData) LatestPrice(_ context.Context, ticker string) (decimal.Decimal, error) {
	if err := f.call(ticker); err != nil {
		return decimal.Zero, err
	}
	price, ok := f.Latest[ticker]
	if !ok {
		return decimal.Zero, fmt.Errorf("%s: %w", ticker, apperrors.ErrSymbolNotFound)
	}
	return price, nil
}

// DividendHistory returns the dividends of ticker.
func (f *FakeMarketData) DividendHistory(_ context.Context, ticker string) ([]model.DividendEvent, error) {
	if err := f.call(ticker); err != nil {
		return nil, err
	}
	return f.Dividends[ticker], nil
}

// Catalog lists the configured benchmarks plus IBOV and CDI.
func (f *FakeMarketData) Catalog() []model.Benchmark {
	catalog := []model.Benchmark{
		{Name: "IBOV", Label: "Ibovespa", Symbol: "^BVSP", Source: model.SourceYahoo},
		{Name: "CDI", Label: "CDI", Symbol: "SGS-12", Source: model.SourceBCB},
	}
	for name := range f.Benchmarks {
		if name != "IBOV" && name != "CDI" {
			catalog = append(catalog, model.Benchmark{Name: name, Label: name, Symbol: name, Source: model.SourceYahoo})
		}
	}
	return catalog
}

// IndexSeries returns the series of a catalog benchmark within [start, end].
func (f *FakeMarketData) IndexSeries(_ context.Context, name string, start, end time.Time) (model.PriceSeries, error) {
	if err := f.call(name); err != nil {
		return nil, err
	}
	for _, b := range f.Catalog() {
		if b.Matches(name) {
			return within(f.Benchmarks[b.Name], start, end), nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, apperrors.ErrBenchmarkNotFound)
}

// Series builds a price series from date/value pairs.
func Series(pairs ...string) model.PriceSeries {
	series := make(model.PriceSeries, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		series = append(series, model.PricePoint{
			Date:  Date(pairs[i]),
			Value: decimal.RequireFromString(pairs[i+1]),
		})
	}
	return series
}

func within(series model.PriceSeries, start, end time.Time) model.PriceSeries {
	out := make(model.PriceSeries, 0, len(series))
	for _, p := range series {
		if !p.Date.Before(start) && !p.Date.After(end) {
			out = append(out, p)
		}
	}
	return out
}

// RecordingNotifier collects triggered alerts. It is safe for concurrent use.
type RecordingNotifier struct {
	mu        sync.Mutex
	Triggered []model.TriggeredAlert
}

// Notify records the alert.
func (n *RecordingNotifier) Notify(_ context.Context, triggered model.TriggeredAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Triggered = append(n.Triggered, triggered)
	return nil
}
