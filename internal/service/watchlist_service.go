package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/carteira-app/carteira/internal/accounting"
	"github.com/carteira-app/carteira/internal/api/request"
	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/model"
	"github.com/carteira-app/carteira/internal/repository"
	"github.com/carteira-app/carteira/internal/validation"
)

// quoteWindowDays is how far back the watchlist looks for its last two
// sessions; it spans a long weekend plus market holidays.
const quoteWindowDays = 10

// WatchlistService manages the tickers an owner follows and quotes them.
type WatchlistService struct {
	watchlistRepo *repository.WatchlistRepository
	prices        PriceFeed
	concurrency   int
	now           func() time.Time
	log           zerolog.Logger
}

// NewWatchlistService creates a new WatchlistService.
func NewWatchlistService(
	watchlistRepo *repository.WatchlistRepository,
	prices PriceFeed,
	concurrency int,
	log zerolog.Logger,
) *WatchlistService {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &WatchlistService{
		watchlistRepo: watchlistRepo,
		prices:        prices,
		concurrency:   concurrency,
		now:           time.Now,
		log:           log.With().Str("component", "watchlist").Logger(),
	}
}

// WithClock overrides the clock used to determine "today". Used by tests.
func (s *WatchlistService) WithClock(now func() time.Time) *WatchlistService {
	s.now = now
	return s
}

// GetWatchlist returns the owner's followed tickers with their latest close
// and the change from the previous close.
func (s *WatchlistService) GetWatchlist(ctx context.Context, owner string) (list model.Watchlist, err error) {
	defer recoverUnavailable(s.log, "watchlist", &err)

	items, err := s.watchlistRepo.GetWatchlist(ctx, owner)
	if err != nil {
		return model.Watchlist{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveWatchlist, err)
	}

	tickers := make([]string, len(items))
	for i, item := range items {
		tickers[i] = item.Ticker
	}
	today := accounting.DateOf(s.now())
	series, failed, err := fetchEach(ctx, s.concurrency, tickers,
		func(ctx context.Context, ticker string) (model.PriceSeries, error) {
			return s.prices.DailyPrices(ctx, ticker, today.AddDate(0, 0, -quoteWindowDays), today)
		})
	if err != nil {
		return model.Watchlist{}, aborted(s.log, "watchlist", err)
	}
	for ticker, ferr := range failed {
		s.log.Warn().Err(ferr).Str("ticker", ticker).Msg("watchlist quote unavailable")
	}

	list = model.Watchlist{
		Owner:         owner,
		Entries:       make([]model.WatchlistEntry, 0, len(items)),
		MissingQuotes: []string{},
	}
	for _, item := range items {
		entry := model.WatchlistEntry{Ticker: item.Ticker, AddedAt: item.AddedAt}
		points := series[item.Ticker]
		if len(points) == 0 {
			list.MissingQuotes = append(list.MissingQuotes, item.Ticker)
			list.Entries = append(list.Entries, entry)
			continue
		}

		last := points[len(points)-1]
		entry.QuoteDate = formatDate(last.Date)
		entry.Price = roundPtr(last.Value, MoneyPlaces)
		if len(points) > 1 {
			prev := points[len(points)-2].Value
			entry.PreviousClose = roundPtr(prev, MoneyPlaces)
			if prev.IsPositive() {
				entry.ChangePercent = roundPtr(last.Value.Sub(prev).Div(prev).Mul(hundred), PercentPlaces)
			}
		}
		list.Entries = append(list.Entries, entry)
	}

	return list, nil
}

// AddTicker follows a ticker after checking the price feed knows it.
// added is false when the owner already followed it.
func (s *WatchlistService) AddTicker(ctx context.Context, owner string, req request.AddWatchlistRequest) (item model.WatchlistItem, added bool, err error) {
	ticker := validation.NormalizeTicker(req.Ticker)
	if err := verifyTicker(ctx, s.prices, ticker, s.log); err != nil {
		return model.WatchlistItem{}, false, err
	}

	added, err = s.watchlistRepo.AddTicker(ctx, owner, ticker)
	if err != nil {
		return model.WatchlistItem{}, false, err
	}
	items, err := s.watchlistRepo.GetWatchlist(ctx, owner)
	if err != nil {
		return model.WatchlistItem{}, false, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveWatchlist, err)
	}
	i := slices.IndexFunc(items, func(it model.WatchlistItem) bool { return it.Ticker == ticker })
	if i < 0 {
		return model.WatchlistItem{}, false, fmt.Errorf("%s: %w", ticker, apperrors.ErrWatchlistItemNotFound)
	}

	if added {
		s.log.Info().Str("owner", owner).Str("ticker", ticker).Msg("ticker followed")
	}
	return items[i], added, nil
}

// RemoveTicker stops following a ticker.
func (s *WatchlistService) RemoveTicker(ctx context.Context, owner, ticker string) error {
	ticker = validation.NormalizeTicker(ticker)
	if err := s.watchlistRepo.RemoveTicker(ctx, owner, ticker); err != nil {
		return err
	}
	s.log.Info().Str("owner", owner).Str("ticker", ticker).Msg("ticker unfollowed")
	return nil
}
