package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/model"
)

// PriceFeed provides daily closes and the latest quote of a ticker.
type PriceFeed interface {
	DailyPrices(ctx context.Context, ticker string, start, end time.Time) (model.PriceSeries, error)
	LatestPrice(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// DividendFeed provides the dividend history of a ticker.
type DividendFeed interface {
	DividendHistory(ctx context.Context, ticker string) ([]model.DividendEvent, error)
}

// BenchmarkFeed provides the benchmark catalog and the series of its entries.
type BenchmarkFeed interface {
	Catalog() []model.Benchmark
	IndexSeries(ctx context.Context, name string, start, end time.Time) (model.PriceSeries, error)
}

// MarketData bundles every external feed the portfolio computations read.
type MarketData interface {
	PriceFeed
	DividendFeed
	BenchmarkFeed
}
