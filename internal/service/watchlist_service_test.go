package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carteira-app/carteira/internal/api/request"
	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/testutil"
	"github.com/carteira-app/carteira/internal/validation"
)

// TestWatchlistService tests followed tickers and their daily change.
//
// WHY: The watchlist is for tickers the owner does not hold, so it cannot lean
// on the ledger; it must quote each ticker itself and survive missing quotes.
func TestWatchlistService(t *testing.T) {
	ctx := context.Background()

	t.Run("quotes the last two sessions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		owner := testutil.MakeOwner("ana")
		feed := testutil.NewFakeMarketData().
			WithLatest("MGLU3.SA", "2.50").
			WithLatest("WEGE3.SA", "40").
			WithPrices("MGLU3.SA", "2023-05-26", "2.00", "2023-05-29", "2.50").
			WithError("WEGE3.SA", errors.New("timeout"))
		svc := testutil.NewTestWatchlistService(t, db, testutil.NewFakeMarketData().
			WithLatest("MGLU3.SA", "2.50").WithLatest("WEGE3.SA", "40"))
		_, added, err := svc.AddTicker(ctx, owner, request.AddWatchlistRequest{Ticker: "mglu3"})
		require.NoError(t, err)
		assert.True(t, added)
		_, _, err = svc.AddTicker(ctx, owner, request.AddWatchlistRequest{Ticker: "WEGE3"})
		require.NoError(t, err)

		svc = testutil.NewTestWatchlistService(t, db, feed).WithClock(fixedClock("2023-05-30"))
		list, err := svc.GetWatchlist(ctx, owner)
		require.NoError(t, err)

		require.Len(t, list.Entries, 2)
		mglu := list.Entries[0]
		assert.Equal(t, "MGLU3.SA", mglu.Ticker)
		assert.Equal(t, "2023-05-29", mglu.QuoteDate)
		assert.Equal(t, 2.5, *mglu.Price)
		assert.Equal(t, 2.0, *mglu.PreviousClose)
		assert.Equal(t, 25.0, *mglu.ChangePercent)

		assert.Nil(t, list.Entries[1].Price)
		assert.Equal(t, []string{"WEGE3.SA"}, list.MissingQuotes)
	})

	t.Run("unknown tickers are rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWatchlistService(t, db, testutil.NewFakeMarketData())

		_, _, err := svc.AddTicker(ctx, testutil.MakeOwner("bia"), request.AddWatchlistRequest{Ticker: "XXXX3"})
		var verr *validation.Error
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields["ticker"], "XXXX3.SA")
	})

	t.Run("following twice is a no-op", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		owner := testutil.MakeOwner("caio")
		svc := testutil.NewTestWatchlistService(t, db, testutil.NewFakeMarketData().WithLatest(petr, "30"))

		_, _, err := svc.AddTicker(ctx, owner, request.AddWatchlistRequest{Ticker: "PETR4"})
		require.NoError(t, err)
		item, added, err := svc.AddTicker(ctx, owner, request.AddWatchlistRequest{Ticker: "petr4.sa"})
		require.NoError(t, err)
		assert.False(t, added)
		assert.Equal(t, petr, item.Ticker)

		require.NoError(t, svc.RemoveTicker(ctx, owner, "petr4"))
		assert.ErrorIs(t, svc.RemoveTicker(ctx, owner, "PETR4"), apperrors.ErrWatchlistItemNotFound)
	})

	t.Run("empty watchlist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWatchlistService(t, db, testutil.NewFakeMarketData())

		list, err := svc.GetWatchlist(ctx, testutil.MakeOwner("duda"))
		require.NoError(t, err)
		assert.NotNil(t, list.Entries)
		assert.Empty(t, list.Entries)
		assert.Empty(t, list.MissingQuotes)
	})
}
