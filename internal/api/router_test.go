package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carteira-app/carteira/internal/api"
	"github.com/carteira-app/carteira/internal/config"
	"github.com/carteira-app/carteira/internal/model"
	"github.com/carteira-app/carteira/internal/testutil"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	feed := testutil.NewFakeMarketData().WithLatest("PETR4.SA", "30")

	services := api.Services{
		System:      testutil.NewTestSystemService(t, db),
		Portfolio:   testutil.NewTestPortfolioService(t, db, feed),
		Transaction: testutil.NewTestTransactionService(t, db),
		Alert:       testutil.NewTestAlertService(t, db, feed, &testutil.RecordingNotifier{}),
		Allocation:  testutil.NewTestAllocationService(t, db, feed),
		Watchlist:   testutil.NewTestWatchlistService(t, db, feed),
	}
	cfg := &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}}
	return api.NewRouter(services, cfg, zerolog.Nop())
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// TestRouter tests the routes end to end through the middleware chain.
//
// WHY: Route patterns and per-route middleware (owner and UUID validation)
// only exist in the router; handler tests bypass them.
func TestRouter(t *testing.T) {
	t.Run("routes exist", func(t *testing.T) {
		router := newTestRouter(t)
		tests := []struct {
			method, path string
			want         int
		}{
			{http.MethodGet, "/api/system/health", http.StatusOK},
			{http.MethodGet, "/api/system/version", http.StatusOK},
			{http.MethodGet, "/api/benchmarks", http.StatusOK},
			{http.MethodGet, "/api/owners/ana/summary", http.StatusOK},
			{http.MethodGet, "/api/owners/ana/evolution?benchmarks=IBOV,CDI", http.StatusOK},
			{http.MethodGet, "/api/owners/ana/transactions", http.StatusOK},
			{http.MethodGet, "/api/owners/ana/alerts", http.StatusOK},
			{http.MethodPost, "/api/owners/ana/alerts/check", http.StatusOK},
			{http.MethodGet, "/api/owners/ana/allocation", http.StatusOK},
			{http.MethodGet, "/api/owners/ana/watchlist", http.StatusOK},
			{http.MethodDelete, "/api/owners/ana/watchlist/VALE3", http.StatusNotFound},
			{http.MethodGet, "/api/owners/ana/transactions/" + testutil.MakeID(), http.StatusNotFound},
			{http.MethodGet, "/api/unknown", http.StatusNotFound},
		}
		for _, tt := range tests {
			w := do(t, router, tt.method, tt.path, "")
			assert.Equal(t, tt.want, w.Code, "%s %s: %s", tt.method, tt.path, w.Body.String())
		}
	})

	t.Run("owner and UUID are validated", func(t *testing.T) {
		router := newTestRouter(t)

		assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/owners/bad%20owner/summary", "").Code)
		assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/owners/ana/transactions/not-a-uuid", "").Code)
	})

	t.Run("transaction lifecycle", func(t *testing.T) {
		router := newTestRouter(t)
		base := "/api/owners/ana/transactions"

		w := do(t, router, http.MethodPost, base, `{"ticker":"PETR4","side":"buy","quantity":10,"unitPrice":20,"date":"2023-01-02"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created model.TransactionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

		w = do(t, router, http.MethodPut, base+"/"+created.ID, `{"unitPrice":"25"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = do(t, router, http.MethodGet, "/api/owners/ana/summary", "")
		require.Equal(t, http.StatusOK, w.Code)
		var summary model.PortfolioSummary
		require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
		assert.Equal(t, 250.0, summary.TotalInvested)
		assert.Equal(t, 300.0, summary.TotalValue)

		w = do(t, router, http.MethodDelete, base+"/"+created.ID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("CORS preflight for allowed origin", func(t *testing.T) {
		router := newTestRouter(t)

		req := httptest.NewRequest(http.MethodOptions, "/api/owners/ana/transactions", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRouter_RequestID(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/api/system/health", "")

	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
