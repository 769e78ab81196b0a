package bcb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAccumulate tests the conversion of daily rates into an index.
//
// WHY: The CDI benchmark is only comparable with the portfolio once daily
// rates are compounded; summing them instead drifts visibly over years.
func TestAccumulate(t *testing.T) {
	t.Run("compounds daily factors", func(t *testing.T) {
		series, err := Accumulate([]Observation{
			{Date: "02/01/2023", Value: "1"},
			{Date: "03/01/2023", Value: "1"},
			{Date: "04/01/2023", Value: "0"},
		})
		require.NoError(t, err)

		require.Len(t, series, 3)
		assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), series[0].Date)
		assert.Equal(t, "1.01", series[0].Value.String())
		assert.Equal(t, "1.0201", series[1].Value.String())
		assert.Equal(t, "1.0201", series[2].Value.String())
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := Accumulate([]Observation{{Date: "02/01/2023", Value: "abc"}})
		assert.Error(t, err)
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := Accumulate([]Observation{{Date: "2023-01-02", Value: "1"}})
		assert.Error(t, err)
	})
}

// TestClient_CDIIndex tests the SGS client against a stub server.
//
// WHY: SGS caps daily windows at ten years, so longer ranges must be split.
func TestClient_CDIIndex(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Query().Get("dataInicial")+"-"+r.URL.Query().Get("dataFinal"))
		assert.Equal(t, "/bcdata.sgs.12/dados", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_ = json.NewEncoder(w).Encode([]Observation{
			{Date: r.URL.Query().Get("dataInicial"), Value: "0.05"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.Client()).WithBaseURL(srv.URL)
	ctx := context.Background()

	t.Run("single window", func(t *testing.T) {
		requests = nil
		start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
		series, err := client.CDIIndex(ctx, start, start.AddDate(0, 1, 0))
		require.NoError(t, err)

		assert.Equal(t, []string{"02/01/2023-02/02/2023"}, requests)
		require.Len(t, series, 1)
		assert.Equal(t, "1.0005", series[0].Value.String())
	})

	t.Run("long range is split", func(t *testing.T) {
		requests = nil
		start := time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)
		series, err := client.CDIIndex(ctx, start, end)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"01/01/2005-31/12/2014",
			"01/01/2015-30/06/2023",
		}, requests)
		assert.Len(t, series, 2)
	})

	t.Run("end before start", func(t *testing.T) {
		start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
		_, err := client.CDIIndex(ctx, start, start.AddDate(0, 0, -1))
		assert.Error(t, err)
	})

	t.Run("server error", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer failing.Close()

		_, err := NewClient(failing.Client()).WithBaseURL(failing.URL).
			CDIIndex(ctx, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC))
		assert.Error(t, err)
	})
}
