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

func TestAllocationHandler(t *testing.T) {
	t.Run("set then compare", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		owner := testutil.MakeOwner("ana")
		testutil.NewTransaction(owner, petr).WithQuantity("10").WithDate(testutil.Date("2023-01-02")).Build(t, db)
		testutil.NewTransaction(owner, "VALE3.SA").WithQuantity("10").WithDate(testutil.Date("2023-01-02")).Build(t, db)
		feed := testutil.NewFakeMarketData().WithLatest(petr, "30").WithLatest("VALE3.SA", "10")
		handler := NewAllocationHandler(testutil.NewTestAllocationService(t, db, feed))
		params := map[string]string{"owner": owner}

		w := httptest.NewRecorder()
		handler.SetAllocation(w, testutil.NewJSONRequestWithURLParams(http.MethodPut, "/",
			`{"targets":[{"ticker":"petr4","percentage":50},{"ticker":"VALE3","percentage":"50"}]}`, params))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = httptest.NewRecorder()
		handler.GetAllocation(w, testutil.NewRequestWithURLParams(http.MethodGet, "/", params))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var cmp model.AllocationComparison
		require.NoError(t, json.NewDecoder(w.Body).Decode(&cmp))
		require.Len(t, cmp.Entries, 2)
		assert.Equal(t, petr, cmp.Entries[0].Ticker)
		assert.Equal(t, 75.0, cmp.Entries[0].CurrentPercent)
		require.NotNil(t, cmp.Entries[0].Difference)
		assert.Equal(t, -25.0, *cmp.Entries[0].Difference)
		assert.Equal(t, 100.0, cmp.TargetTotal)
	})

	t.Run("rejects targets above 100%", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewAllocationHandler(testutil.NewTestAllocationService(t, db, testutil.NewFakeMarketData()))

		w := httptest.NewRecorder()
		handler.SetAllocation(w, testutil.NewJSONRequestWithURLParams(http.MethodPut, "/",
			`{"targets":[{"ticker":"PETR4","percentage":70},{"ticker":"VALE3","percentage":40}]}`, map[string]string{"owner": "ana"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
