package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carteira-app/carteira/internal/model"
	"github.com/carteira-app/carteira/internal/testutil"
)

func TestWatchlistHandler(t *testing.T) {
	t.Run("follow, list and unfollow", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		owner := testutil.MakeOwner("ana")
		feed := testutil.NewFakeMarketData().WithLatest(petr, "30")
		handler := NewWatchlistHandler(testutil.NewTestWatchlistService(t, db, feed))
		params := map[string]string{"owner": owner}

		w := httptest.NewRecorder()
		handler.AddTicker(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/", `{"ticker":"petr4"}`, params))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var item model.WatchlistItem
		require.NoError(t, json.NewDecoder(w.Body).Decode(&item))
		assert.Equal(t, petr, item.Ticker)

		w = httptest.NewRecorder()
		handler.AddTicker(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/", `{"ticker":"PETR4.SA"}`, params))
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = httptest.NewRecorder()
		handler.GetWatchlist(w, testutil.NewRequestWithURLParams(http.MethodGet, "/", params))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var list model.Watchlist
		require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
		require.Len(t, list.Entries, 1)
		assert.Equal(t, []string{petr}, list.MissingQuotes)

		del := map[string]string{"owner": owner, "ticker": "PETR4"}
		w = httptest.NewRecorder()
		handler.RemoveTicker(w, testutil.NewRequestWithURLParams(http.MethodDelete, "/", del))
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = httptest.NewRecorder()
		handler.RemoveTicker(w, testutil.NewRequestWithURLParams(http.MethodDelete, "/", del))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects an empty ticker", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewWatchlistHandler(testutil.NewTestWatchlistService(t, db, testutil.NewFakeMarketData()))

		w := httptest.NewRecorder()
		handler.AddTicker(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/", `{"ticker":" "}`, map[string]string{"owner": "ana"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects an unknown ticker", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewWatchlistHandler(testutil.NewTestWatchlistService(t, db, testutil.NewFakeMarketData()))

		w := httptest.NewRecorder()
		handler.AddTicker(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/", `{"ticker":"XXXX3"}`, map[string]string{"owner": "ana"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
