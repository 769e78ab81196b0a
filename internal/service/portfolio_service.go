package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carteira-app/carteira/internal/accounting"
	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/model"
	"github.com/carteira-app/carteira/internal/repository"
)

// PortfolioService assembles the presentation outputs of the accounting
// engine: the current summary of an owner's portfolio and its evolution
// compared against benchmarks.
//
// Every call reads a fresh ledger snapshot, fetches the external data it
// needs in parallel, and hands both to the pure functions of the accounting
// package. Nothing derived is kept between calls.
type PortfolioService struct {
	snapshot snapshotLoader
	feed     MarketData
	log      zerolog.Logger
}

// NewPortfolioService creates a new PortfolioService.
// concurrency bounds the feed requests in flight per call.
func NewPortfolioService(
	transactionRepo *repository.TransactionRepository,
	feed MarketData,
	concurrency int,
	log zerolog.Logger,
) *PortfolioService {
	return &PortfolioService{
		snapshot: newSnapshotLoader(transactionRepo, concurrency),
		feed:     feed,
		log:      log.With().Str("component", "portfolio").Logger(),
	}
}

// WithClock overrides the clock used to determine "today". Used by tests.
func (s *PortfolioService) WithClock(now func() time.Time) *PortfolioService {
	s.snapshot.now = now
	return s
}

// Summary computes the current state of the owner's portfolio.
//
// Holdings are consolidated with the all-time weighted average cost, marked to
// the latest quote of each held ticker, and complemented with realized P&L
// (gains and losses reported separately) and the dividend income attributed
// to the shares held before each ex-date.
//
// Conditions that only affect part of the result are reported inside it:
//   - MissingQuotes: held tickers without a latest price (excluded from market value)
//   - MissingCostBasis: tickers sold without any buy (realized P&L unavailable)
//   - DividendsUnavailable: tickers whose dividend history could not be loaded
//   - Oversells: sells exceeding the quantity held at their trade date
//
// An owner without transactions yields Empty: true. Failures reading the
// ledger return apperrors.ErrFailedToRetrieveTransactions; any other
// unexpected failure returns apperrors.ErrDataUnavailable.
func (s *PortfolioService) Summary(ctx context.Context, owner string) (summary model.PortfolioSummary, err error) {
	defer recoverUnavailable(s.log, "summary", &err)

	txs, err := s.snapshot.ledger(ctx, owner)
	if err != nil {
		return model.PortfolioSummary{}, err
	}
	if len(txs) == 0 {
		return emptySummary(owner), nil
	}

	pos := accounting.Consolidate(txs)
	realized := accounting.Realize(txs, pos.Bought)

	quotes, _, err := fetchEach(ctx, s.snapshot.concurrency, pos.Tickers(), s.feed.LatestPrice)
	if err != nil {
		return model.PortfolioSummary{}, aborted(s.log, "summary", err)
	}
	history, dividendFailures, err := fetchEach(ctx, s.snapshot.concurrency, accounting.Tickers(txs), s.feed.DividendHistory)
	if err != nil {
		return model.PortfolioSummary{}, aborted(s.log, "summary", err)
	}
	for ticker, ferr := range dividendFailures {
		s.log.Warn().Err(ferr).Str("ticker", ticker).Msg("dividend history unavailable")
	}

	income := accounting.AttributeDividends(txs, history)
	valuation := accounting.Valuate(pos, quotes)

	summary = model.PortfolioSummary{
		Owner:                owner,
		Holdings:             make([]model.HoldingSummary, 0, len(valuation.Holdings)),
		TotalInvested:        round(valuation.Invested, MoneyPlaces),
		TotalValue:           round(valuation.MarketValue, MoneyPlaces),
		UnrealizedGainLoss:   round(valuation.Unrealized, MoneyPlaces),
		UnrealizedGains:      round(valuation.UnrealizedGains, MoneyPlaces),
		UnrealizedLosses:     round(valuation.UnrealizedLosses, MoneyPlaces),
		RealizedGains:        round(realized.Gains, MoneyPlaces),
		RealizedLosses:       round(realized.Losses, MoneyPlaces),
		RealizedNet:          round(realized.Net(), MoneyPlaces),
		TotalDividends:       round(income.Total, MoneyPlaces),
		RealizedEvents:       make([]model.RealizedGainLoss, 0, len(realized.Events)),
		MissingQuotes:        nonNil(valuation.MissingQuotes),
		MissingCostBasis:     nonNil(pos.MissingCostBasis),
		DividendsUnavailable: sortedKeys(dividendFailures),
		Oversells:            make([]model.Oversell, 0, len(pos.Oversells)),
	}

	for _, v := range valuation.Holdings {
		summary.Holdings = append(summary.Holdings, toHoldingSummary(v))
	}
	for _, e := range realized.Events {
		summary.RealizedEvents = append(summary.RealizedEvents, model.RealizedGainLoss{
			TransactionID:    e.TransactionID,
			Ticker:           e.Ticker,
			TransactionDate:  formatDate(e.TradeDate),
			SharesSold:       round(e.Quantity, QuantityPlaces),
			SaleProceeds:     round(e.Proceeds, MoneyPlaces),
			CostBasis:        round(e.CostRemoved, MoneyPlaces),
			RealizedGainLoss: round(e.Gain, MoneyPlaces),
			Available:        e.Available,
		})
	}
	for _, o := range pos.Oversells {
		s.log.Warn().Err(o.Err()).Str("owner", owner).Str("transaction_id", o.TransactionID).Msg("oversell in ledger")
		summary.Oversells = append(summary.Oversells, model.Oversell{
			TransactionID: o.TransactionID,
			Ticker:        o.Ticker,
			TradeDate:     formatDate(o.TradeDate),
			Requested:     round(o.Requested, QuantityPlaces),
			Available:     round(o.Available, QuantityPlaces),
			Message:       o.Err().Error(),
		})
	}

	s.log.Debug().
		Str("owner", owner).
		Int("transactions", len(txs)).
		Int("holdings", len(summary.Holdings)).
		Int("missing_quotes", len(summary.MissingQuotes)).
		Msg("summary computed")

	return summary, nil
}

// Evolution reconstructs the daily value and cost of the owner's portfolio
// from the first transaction until today and compares it, on base 100,
// against the requested benchmarks.
//
// Benchmark names are matched case-insensitively against the catalog.
// Benchmarks that are unknown, fail to load or cannot be normalized are
// listed in Dropped. When the price feed has nothing for any ticker the chart
// is returned with Available: false rather than a zero-filled series.
func (s *PortfolioService) Evolution(ctx context.Context, owner string, benchmarks []string) (chart model.EvolutionChart, err error) {
	defer recoverUnavailable(s.log, "evolution", &err)

	txs, err := s.snapshot.ledger(ctx, owner)
	if err != nil {
		return model.EvolutionChart{}, err
	}
	chart = emptyChart(owner)
	if len(txs) == 0 {
		chart.Empty = true
		return chart, nil
	}

	today := s.snapshot.today()
	start, _ := accounting.FirstTradeDate(txs)

	prices, priceFailures, err := fetchEach(ctx, s.snapshot.concurrency, accounting.Tickers(txs),
		func(ctx context.Context, ticker string) (model.PriceSeries, error) {
			return s.feed.DailyPrices(ctx, ticker, start, today)
		})
	if err != nil {
		return model.EvolutionChart{}, aborted(s.log, "evolution", err)
	}
	for ticker, ferr := range priceFailures {
		s.log.Warn().Err(ferr).Str("ticker", ticker).Msg("daily prices unavailable")
	}

	series, err := accounting.Reconstruct(txs, prices, today)
	chart.MissingPrices = nonNil(series.MissingPrices)
	switch {
	case errors.Is(err, accounting.ErrNoSeries):
		s.log.Info().Err(err).Str("owner", owner).Msg("no evolution series available")
		return chart, nil
	case err != nil:
		return model.EvolutionChart{}, unavailable(s.log, "evolution", err)
	}

	chart.Available = true
	for i, date := range series.Dates {
		chart.Value = append(chart.Value, model.SeriesPoint{Date: formatDate(date), Value: round(series.Value[i], MoneyPlaces)})
		chart.Cost = append(chart.Cost, model.SeriesPoint{Date: formatDate(date), Value: round(series.Cost[i], MoneyPlaces)})
	}

	names := s.benchmarkNames(benchmarks)
	indexes, indexFailures, err := fetchEach(ctx, s.snapshot.concurrency, names,
		func(ctx context.Context, name string) (model.PriceSeries, error) {
			return s.feed.IndexSeries(ctx, name, series.Dates[0], today)
		})
	if err != nil {
		return model.EvolutionChart{}, aborted(s.log, "evolution", err)
	}

	cmp, err := accounting.Compare(series, indexes, names)
	switch {
	case errors.Is(err, accounting.ErrNoSeries):
		s.log.Info().Str("owner", owner).Msg("portfolio never had a market value to compare")
		return chart, nil
	case err != nil:
		return model.EvolutionChart{}, unavailable(s.log, "evolution", err)
	}

	for _, name := range cmp.Order {
		values := cmp.Series[name].Values
		points := make([]model.SeriesPoint, len(values))
		for i, v := range values {
			points[i] = model.SeriesPoint{Date: formatDate(cmp.Dates[i]), Value: round(v, IndexPlaces)}
		}
		chart.Normalized[name] = points
	}
	chart.Order = nonNil(cmp.Order)
	for _, d := range cmp.Dropped {
		cause := d.Err
		if ferr, ok := indexFailures[d.Name]; ok {
			cause = ferr
		}
		s.log.Info().Err(cause).Str("benchmark", d.Name).Msg("benchmark dropped")
		chart.Dropped = append(chart.Dropped, model.DroppedBenchmark{Name: d.Name, Reason: dropReason(cause)})
	}

	return chart, nil
}

// Benchmarks returns the benchmark catalog.
func (s *PortfolioService) Benchmarks() []model.Benchmark {
	return s.feed.Catalog()
}

// benchmarkNames canonicalizes requested names to their catalog spelling,
// keeping unknown names as given so they are reported as dropped.
func (s *PortfolioService) benchmarkNames(requested []string) []string {
	catalog := s.feed.Catalog()
	names := make([]string, 0, len(requested))
	for _, name := range requested {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		for _, b := range catalog {
			if b.Matches(name) {
				name = b.Name
				break
			}
		}
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

func toHoldingSummary(v accounting.Valuation) model.HoldingSummary {
	h := model.HoldingSummary{
		Ticker:      v.Ticker,
		Quantity:    round(v.Quantity, QuantityPlaces),
		AverageCost: round(v.AverageCost, MoneyPlaces),
		TotalCost:   round(v.Cost(), MoneyPlaces),
	}
	if v.Quoted {
		h.LatestPrice = roundPtr(v.Price, MoneyPlaces)
		h.CurrentValue = roundPtr(v.MarketValue, MoneyPlaces)
		h.UnrealizedGainLoss = roundPtr(v.Unrealized, MoneyPlaces)
		h.VariationPercent = roundPtr(v.VariationPercent, PercentPlaces)
		h.PortfolioPercent = roundPtr(v.Weight, PercentPlaces)
	}
	return h
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrBenchmarkNotFound):
		return "unknown benchmark"
	case errors.Is(err, accounting.ErrZeroBase):
		return "first value is zero"
	case errors.Is(err, accounting.ErrNoPriceData):
		return "no data for the period"
	default:
		return apperrors.ErrDataUnavailable.Error()
	}
}

func emptySummary(owner string) model.PortfolioSummary {
	return model.PortfolioSummary{
		Owner:                owner,
		Empty:                true,
		Holdings:             []model.HoldingSummary{},
		RealizedEvents:       []model.RealizedGainLoss{},
		MissingQuotes:        []string{},
		MissingCostBasis:     []string{},
		DividendsUnavailable: []string{},
		Oversells:            []model.Oversell{},
	}
}

func emptyChart(owner string) model.EvolutionChart {
	return model.EvolutionChart{
		Owner:         owner,
		Value:         []model.SeriesPoint{},
		Cost:          []model.SeriesPoint{},
		Normalized:    map[string][]model.SeriesPoint{},
		Order:         []string{},
		Dropped:       []model.DroppedBenchmark{},
		MissingPrices: []string{},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
