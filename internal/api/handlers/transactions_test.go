package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carteira-app/carteira/internal/model"
	"github.com/carteira-app/carteira/internal/testutil"
)

func setupTransactionHandler(t *testing.T) (*TransactionHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewTransactionHandler(testutil.NewTestTransactionService(t, db)), db
}

// TestTransactionHandler_ListTransactions tests listing an owner's ledger.
//
// WHY: The ledger listing must be scoped to the owner in the path and must
// serialize an empty ledger as [] rather than null.
func TestTransactionHandler_ListTransactions(t *testing.T) {
	t.Run("returns empty array when no transactions exist", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)
		owner := testutil.MakeOwner("ana")

		w := httptest.NewRecorder()
		handler.ListTransactions(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/owners/"+owner+"/transactions", map[string]string{"owner": owner}))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("returns only the owner's transactions in order", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		owner := testutil.MakeOwner("ana")
		ledger := testutil.CreateScenarioLedger(t, db, owner, "PETR4.SA")
		testutil.NewTransaction(testutil.MakeOwner("bia"), "PETR4.SA").Build(t, db)

		w := httptest.NewRecorder()
		handler.ListTransactions(w, testutil.NewRequestWithURLParams(http.MethodGet, "/", map[string]string{"owner": owner}))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp []model.TransactionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp, len(ledger))
		for i, tx := range ledger {
			assert.Equal(t, tx.ID, resp[i].ID)
		}
	})
}

func TestTransactionHandler_GetTransaction(t *testing.T) {
	t.Run("returns the transaction", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		owner := testutil.MakeOwner("ana")
		tx := testutil.NewTransaction(owner, "PETR4.SA").WithDate(testutil.Date("2023-01-02")).Build(t, db)

		w := httptest.NewRecorder()
		handler.GetTransaction(w, testutil.NewRequestWithURLParams(http.MethodGet, "/", map[string]string{"owner": owner, "uuid": tx.ID}))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp model.TransactionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, tx.ID, resp.ID)
		assert.Equal(t, "2023-01-02", resp.TradeDate)
		assert.Equal(t, 1000.0, resp.Total)
	})

	t.Run("returns 404 for another owner's transaction", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		tx := testutil.NewTransaction(testutil.MakeOwner("ana"), "PETR4.SA").Build(t, db)

		w := httptest.NewRecorder()
		handler.GetTransaction(w, testutil.NewRequestWithURLParams(http.MethodGet, "/", map[string]string{"owner": testutil.MakeOwner("bia"), "uuid": tx.ID}))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// TestTransactionHandler_CreateTransaction tests recording a transaction.
//
// WHY: Input validation is the only guard against quantities, prices and dates
// that would corrupt every derived number of the portfolio.
func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("creates and normalizes the ticker", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)
		owner := testutil.MakeOwner("ana")

		w := httptest.NewRecorder()
		handler.CreateTransaction(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/",
			`{"ticker":" petr4 ","side":"BUY","quantity":"10","unitPrice":12.5,"date":"2023-01-02"}`,
			map[string]string{"owner": owner}))

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp model.TransactionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, owner, resp.Owner)
		assert.Equal(t, "PETR4.SA", resp.Ticker)
		assert.Equal(t, model.Buy, resp.Side)
		assert.Equal(t, 125.0, resp.Total)
	})

	t.Run("returns field errors", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		w := httptest.NewRecorder()
		handler.CreateTransaction(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/",
			`{"ticker":"","side":"hold","quantity":0,"unitPrice":0.001,"date":"2999-01-01"}`,
			map[string]string{"owner": "ana"}))

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Error   string            `json:"error"`
			Details map[string]string `json:"details"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "validation failed", resp.Error)
		for _, field := range []string{"ticker", "side", "quantity", "unitPrice", "date"} {
			assert.Contains(t, resp.Details, field)
		}
	})

	t.Run("returns 400 for invalid body", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		w := httptest.NewRecorder()
		handler.CreateTransaction(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/", `not json`, map[string]string{"owner": "ana"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	t.Run("updates selected fields", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		owner := testutil.MakeOwner("ana")
		tx := testutil.NewTransaction(owner, "PETR4.SA").WithDate(testutil.Date("2023-01-02")).Build(t, db)

		w := httptest.NewRecorder()
		handler.UpdateTransaction(w, testutil.NewJSONRequestWithURLParams(http.MethodPut, "/",
			`{"quantity":"50"}`, map[string]string{"owner": owner, "uuid": tx.ID}))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp model.TransactionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, 50.0, resp.Quantity)
		assert.Equal(t, "PETR4.SA", resp.Ticker)
	})

	t.Run("returns 404 when transaction not found", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		w := httptest.NewRecorder()
		handler.UpdateTransaction(w, testutil.NewJSONRequestWithURLParams(http.MethodPut, "/",
			`{"quantity":"50"}`, map[string]string{"owner": "ana", "uuid": testutil.MakeID()}))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	handler, db := setupTransactionHandler(t)
	owner := testutil.MakeOwner("ana")
	tx := testutil.NewTransaction(owner, "PETR4.SA").Build(t, db)
	params := map[string]string{"owner": owner, "uuid": tx.ID}

	w := httptest.NewRecorder()
	handler.DeleteTransaction(w, testutil.NewRequestWithURLParams(http.MethodDelete, "/", params))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	handler.DeleteTransaction(w, testutil.NewRequestWithURLParams(http.MethodDelete, "/", params))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestTransactionHandler_ImportTransactions tests batch imports.
//
// WHY: A partially stored import would leave a ledger whose positions match
// neither the broker statement nor the previous state.
func TestTransactionHandler_ImportTransactions(t *testing.T) {
	t.Run("stores the batch in order", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)
		owner := testutil.MakeOwner("ana")
		params := map[string]string{"owner": owner}

		w := httptest.NewRecorder()
		handler.ImportTransactions(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/", `{"transactions":[
			{"ticker":"PETR4","side":"buy","quantity":10,"unitPrice":10,"date":"2023-01-02"},
			{"ticker":"PETR4","side":"sell","quantity":5,"unitPrice":12,"date":"2023-01-02"}
		]}`, params))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = httptest.NewRecorder()
		handler.ListTransactions(w, testutil.NewRequestWithURLParams(http.MethodGet, "/", params))
		var resp []model.TransactionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp, 2)
		assert.Equal(t, model.Buy, resp[0].Side)
		assert.Equal(t, model.Sell, resp[1].Side)
	})

	t.Run("one invalid entry rejects the whole batch", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)
		owner := testutil.MakeOwner("bia")
		params := map[string]string{"owner": owner}

		w := httptest.NewRecorder()
		handler.ImportTransactions(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/", `{"transactions":[
			{"ticker":"PETR4","side":"buy","quantity":10,"unitPrice":10,"date":"2023-01-02"},
			{"ticker":"VALE3","side":"buy","quantity":0,"unitPrice":10,"date":"2023-01-02"}
		]}`, params))
		require.Equal(t, http.StatusBadRequest, w.Code)
		var body struct {
			Details map[string]string `json:"details"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Contains(t, body.Details, "transactions[1].quantity")

		w = httptest.NewRecorder()
		handler.ListTransactions(w, testutil.NewRequestWithURLParams(http.MethodGet, "/", params))
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("rejects an empty batch", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		w := httptest.NewRecorder()
		handler.ImportTransactions(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/", `{"transactions":[]}`, map[string]string{"owner": "ana"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
