// Package marketdata is the external data collaborator of the accounting
// engine: daily prices, latest quotes, dividend history and benchmark
// series, memoized for a bounded time and de-duplicated across concurrent
// callers.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/model"
	"github.com/carteira-app/carteira/internal/yahoo"
)

// ErrNoQuote indicates the feed has no recent price for a ticker.
var ErrNoQuote = errors.New("no quote available")

// CDISource provides the accumulated CDI index.
type CDISource interface {
	CDIIndex(ctx context.Context, start, end time.Time) (model.PriceSeries, error)
}

// Options configures a Feed.
type Options struct {
	Timeout           time.Duration
	PriceCacheTTL     time.Duration
	DividendCacheTTL  time.Duration
	BenchmarkCacheTTL time.Duration
	// Now overrides the clock; used by tests.
	Now func() time.Time
}

// Feed implements the price, dividend and benchmark feed contracts on top of
// Yahoo Finance and the BCB SGS service.
type Feed struct {
	yahoo   yahoo.Client
	cdi     CDISource
	timeout time.Duration
	log     zerolog.Logger

	prices     *ttlCache[model.PriceSeries]
	latest     *ttlCache[decimal.Decimal]
	dividends  *ttlCache[[]model.DividendEvent]
	benchmarks *ttlCache[model.PriceSeries]

	group singleflight.Group
}

// NewFeed creates a Feed. Zero durations in opts fall back to 10s timeout,
// 15m price TTL and 24h dividend and benchmark TTLs.
func NewFeed(yc yahoo.Client, cdi CDISource, opts Options, log zerolog.Logger) *Feed {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Feed{
		yahoo:      yc,
		cdi:        cdi,
		timeout:    orDefault(opts.Timeout, 10*time.Second),
		log:        log.With().Str("component", "marketdata").Logger(),
		prices:     newTTLCache[model.PriceSeries](orDefault(opts.PriceCacheTTL, 15*time.Minute), now),
		latest:     newTTLCache[decimal.Decimal](orDefault(opts.PriceCacheTTL, 15*time.Minute), now),
		dividends:  newTTLCache[[]model.DividendEvent](orDefault(opts.DividendCacheTTL, 24*time.Hour), now),
		benchmarks: newTTLCache[model.PriceSeries](orDefault(opts.BenchmarkCacheTTL, 24*time.Hour), now),
	}
}

// DailyPrices returns the daily closes of ticker between start and end.
// The series may be empty.
func (f *Feed) DailyPrices(ctx context.Context, ticker string, start, end time.Time) (model.PriceSeries, error) {
	key := rangeKey(ticker, start, end)
	return cached(ctx, f, f.prices, "prices:"+key, func(ctx context.Context) (model.PriceSeries, error) {
		resp, err := f.yahoo.QueryYahooSymbolByDateRange(ctx, ticker, start, end)
		if err != nil {
			return nil, err
		}
		chart, err := f.yahoo.ParseChart(resp)
		if err != nil {
			return nil, err
		}
		return chart.Closes(), nil
	})
}

// LatestPrice returns the most recent close of ticker, or ErrNoQuote.
func (f *Feed) LatestPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	return cached(ctx, f, f.latest, "latest:"+ticker, func(ctx context.Context) (decimal.Decimal, error) {
		resp, err := f.yahoo.QueryYahooFiveDaySymbol(ctx, ticker)
		if err != nil {
			return decimal.Zero, err
		}
		chart, err := f.yahoo.ParseChart(resp)
		if err != nil {
			return decimal.Zero, err
		}
		last, ok := chart.LatestClose()
		if !ok || !last.Value.IsPositive() {
			return decimal.Zero, fmt.Errorf("%s: %w", ticker, ErrNoQuote)
		}
		return last.Value, nil
	})
}

// DividendHistory returns every dividend ticker has paid.
func (f *Feed) DividendHistory(ctx context.Context, ticker string) ([]model.DividendEvent, error) {
	return cached(ctx, f, f.dividends, "dividends:"+ticker, func(ctx context.Context) ([]model.DividendEvent, error) {
		resp, err := f.yahoo.QueryDividendHistory(ctx, ticker)
		if err != nil {
			return nil, err
		}
		chart, err := f.yahoo.ParseChart(resp)
		if err != nil {
			return nil, err
		}
		return chart.DividendEvents(ticker), nil
	})
}

// Catalog returns the benchmarks that can be requested by name.
func (f *Feed) Catalog() []model.Benchmark {
	return slices.Clone(catalog)
}

// IndexSeries returns the series of the named benchmark between start and end.
// Unknown names yield apperrors.ErrBenchmarkNotFound.
func (f *Feed) IndexSeries(ctx context.Context, name string, start, end time.Time) (model.PriceSeries, error) {
	b, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, apperrors.ErrBenchmarkNotFound)
	}

	key := rangeKey(b.Name, start, end)
	return cached(ctx, f, f.benchmarks, "benchmark:"+key, func(ctx context.Context) (model.PriceSeries, error) {
		switch b.Source {
		case model.SourceBCB:
			return f.cdi.CDIIndex(ctx, start, end)
		default:
			return f.DailyPrices(ctx, b.Symbol, start, end)
		}
	})
}

// PurgeExpired drops every expired cache entry and returns how many were removed.
func (f *Feed) PurgeExpired() int {
	return f.prices.purge() + f.latest.purge() + f.dividends.purge() + f.benchmarks.purge()
}

// cached serves key from cache or loads it once for all concurrent callers.
// The load runs detached from the caller's cancellation but bounded by the
// feed timeout, so one impatient caller does not fail the others.
func cached[V any](ctx context.Context, f *Feed, cache *ttlCache[V], key string, load func(context.Context) (V, error)) (V, error) {
	if v, ok := cache.get(key); ok {
		return v, nil
	}

	ch := f.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()

		start := time.Now()
		v, err := load(loadCtx)
		if err != nil {
			f.log.Warn().Err(err).Str("key", key).Dur("took", time.Since(start)).Msg("feed request failed")
			return v, err
		}
		cache.set(key, v)
		f.log.Debug().Str("key", key).Dur("took", time.Since(start)).Msg("feed request")
		return v, nil
	})

	select {
	case res := <-ch:
		v, _ := res.Val.(V)
		return v, res.Err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

func rangeKey(name string, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s", name, start.Format(time.DateOnly), end.Format(time.DateOnly))
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
