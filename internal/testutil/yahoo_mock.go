package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carteira-app/carteira/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined responses per symbol instead of making API calls.
// It is safe for concurrent use.
type MockYahooClient struct {
	mu sync.Mutex
	// Responses maps a symbol to the response returned for every query of it.
	Responses map[string]yahoo.Response
	// MockError, when set, is returned from every query.
	MockError error
	// QueryCount tracks how many times a query method was called
	QueryCount int
	// Delay, when set, is slept before answering (honoring the context).
	Delay time.Duration
}

// NewMockYahooClient creates a new mock Yahoo client without any symbol.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		Responses: make(map[string]yahoo.Response),
	}
}

// WithError configures the mock to return the specified error.
func (m *MockYahooClient) WithError(err error) *MockYahooClient {
	m.MockError = err
	return m
}

// WithResponse configures the response returned for symbol.
func (m *MockYahooClient) WithResponse(symbol string, resp yahoo.Response) *MockYahooClient {
	m.Responses[symbol] = resp
	return m
}

// Count returns the number of queries made so far.
func (m *MockYahooClient) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.QueryCount
}

func (m *MockYahooClient) respond(ctx context.Context, symbol string) (yahoo.Response, error) {
	m.mu.Lock()
	m.QueryCount++
	resp, ok := m.Responses[symbol]
	err := m.MockError
	delay := m.Delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return yahoo.Response{}, ctx.Err()
		}
	}
	if err != nil {
		return yahoo.Response{}, err
	}
	if !ok {
		return yahoo.Response{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}
	return resp, nil
}

// QueryYahooFiveDaySymbol returns the configured response for symbol.
func (m *MockYahooClient) QueryYahooFiveDaySymbol(ctx context.Context, symbol string) (yahoo.Response, error) {
	return m.respond(ctx, symbol)
}

// QueryYahooSymbolByDateRange returns the configured response for symbol.
// The range is not applied; the consumer filters dates.
func (m *MockYahooClient) QueryYahooSymbolByDateRange(ctx context.Context, symbol string, _, _ time.Time) (yahoo.Response, error) {
	return m.respond(ctx, symbol)
}

// QueryDividendHistory returns the configured response for symbol.
func (m *MockYahooClient) QueryDividendHistory(ctx context.Context, symbol string) (yahoo.Response, error) {
	return m.respond(ctx, symbol)
}

// ParseChart delegates to the real ParseChart method since it's pure logic with no side effects.
func (m *MockYahooClient) ParseChart(yahooResult yahoo.Response) (yahoo.PriceChart, error) {
	return yahoo.NewFinanceClient(nil).ParseChart(yahooResult)
}

// DailyClose is one session of a mock chart.
type DailyClose struct {
	Date  time.Time
	Close float64
}

// CreateMockYahooResponse creates a chart response for symbol with the given
// sessions (dated at 13:00 UTC, B3 offset) and dividends keyed by ex-date.
func CreateMockYahooResponse(symbol string, closes []DailyClose, dividends map[time.Time]float64) yahoo.Response {
	const offset = -3 * 60 * 60

	timestamps := make([]int64, len(closes))
	values := make([]*float64, len(closes))
	volumes := make([]*int64, len(closes))
	for i, c := range closes {
		timestamps[i] = time.Date(c.Date.Year(), c.Date.Month(), c.Date.Day(), 13, 0, 0, 0, time.UTC).Unix()
		v := c.Close
		vol := int64(1000000 + i*10000)
		values[i] = &v
		volumes[i] = &vol
	}

	result := yahoo.Result{
		Meta: yahoo.Meta{
			Symbol:    symbol,
			Currency:  "BRL",
			GmtOffset: offset,
		},
		Timestamp: timestamps,
		Indicators: yahoo.IndicatorsContainer{
			Quote: []yahoo.Quote{{
				Open:   values,
				High:   values,
				Low:    values,
				Close:  values,
				Volume: volumes,
			}},
		},
	}

	if len(dividends) > 0 {
		result.Events = &yahoo.Events{Dividends: make(map[string]yahoo.DividendEvent)}
		for exDate, amount := range dividends {
			// midnight in São Paulo
			ts := time.Date(exDate.Year(), exDate.Month(), exDate.Day(), 3, 0, 0, 0, time.UTC).Unix()
			result.Events.Dividends[fmt.Sprint(ts)] = yahoo.DividendEvent{Amount: amount, Date: ts}
		}
	}

	return yahoo.Response{Chart: yahoo.Chart{Result: []yahoo.Result{result}}}
}

// CreateMockYahooResponseForDate creates a mock Yahoo response with a single day's data.
func CreateMockYahooResponseForDate(symbol string, date time.Time, price float64) yahoo.Response {
	return CreateMockYahooResponse(symbol, []DailyClose{{Date: date, Close: price}}, nil)
}
