package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/model"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// chart error code for unknown or delisted symbols
	notFoundCode = "Not Found"
)

// Client is the subset of FinanceClient used by the market data layer.
type Client interface {
	QueryYahooFiveDaySymbol(ctx context.Context, symbol string) (Response, error)
	QueryYahooSymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error)
	QueryDividendHistory(ctx context.Context, symbol string) (Response, error)
	ParseChart(yahooResult Response) (PriceChart, error)
}

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// It wraps an HTTP client and provides convenient methods for querying stock prices
// and dividend history.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewFinanceClient creates a new Yahoo Finance client.
// A nil httpClient falls back to http.DefaultClient; callers bound each
// request with the context they pass in.
//
// Returns:
//   - *FinanceClient: A new client instance ready for use
func NewFinanceClient(httpClient *http.Client) *FinanceClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &FinanceClient{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
	}
}

// WithBaseURL returns a copy of the client targeting another chart endpoint.
func (c *FinanceClient) WithBaseURL(baseURL string) *FinanceClient {
	return &FinanceClient{
		httpClient: c.httpClient,
		baseURL:    baseURL,
	}
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
//
// Days whose close is null are skipped. Dates are shifted by the exchange's UTC
// offset before being truncated, so a session is dated in its own calendar.
// Dividend events are sorted by ex-date.
//
// The method performs validation to ensure:
//   - A result is present
//   - Close price data is present when timestamps are
//   - Data arrays have matching lengths
//
// Parameters:
//   - yahooResult: Raw response from Yahoo Finance API
//
// Returns:
//   - PriceChart: Structured chart with indicators, dividends and metadata
//   - error: If data is missing, malformed, or arrays have mismatched lengths
func (c *FinanceClient) ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no price data returned")
	}
	result := yahooResult.Chart.Result[0]

	chart := PriceChart{
		Symbol:           result.Meta.Symbol,
		Currency:         result.Meta.Currency,
		ExchangeName:     result.Meta.ExchangeName,
		FullExchangeName: result.Meta.FullExchangeName,
		LongName:         result.Meta.LongName,
		Shortname:        result.Meta.Shortname,
	}
	offset := result.Meta.GmtOffset

	if len(result.Timestamp) > 0 {
		if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
			return PriceChart{}, fmt.Errorf("no close prices returned")
		}
		quote := result.Indicators.Quote[0]
		if len(quote.Close) != len(result.Timestamp) {
			return PriceChart{}, fmt.Errorf("mismatched data lengths")
		}

		chart.Indicators = make([]Indicators, 0, len(result.Timestamp))
		for i, ts := range result.Timestamp {
			closePrice := quote.Close[i]
			if closePrice == nil || math.IsNaN(*closePrice) {
				continue
			}
			chart.Indicators = append(chart.Indicators, Indicators{
				Date:       sessionDate(ts, offset),
				PriceClose: *closePrice,
				PriceOpen:  floatAt(quote.Open, i),
				PriceHigh:  floatAt(quote.High, i),
				PriceLow:   floatAt(quote.Low, i),
				Volume:     intAt(quote.Volume, i),
			})
		}
	}

	if result.Events != nil {
		for _, d := range result.Events.Dividends {
			chart.Dividends = append(chart.Dividends, Dividend{
				ExDate: sessionDate(d.Date, offset),
				Amount: d.Amount,
			})
		}
		slices.SortFunc(chart.Dividends, func(a, b Dividend) int {
			return a.ExDate.Compare(b.ExDate)
		})
	}

	return chart, nil
}

// GetIndicatorForDate searches for price data matching a specific date.
// The method performs date-only comparison by truncating both the target and
// indicator dates to midnight UTC, ignoring time components.
//
// Parameters:
//   - target: The date to search for (time component is ignored)
//
// Returns:
//   - Indicators: The price data for the matching date
//   - bool: true if a match was found, false otherwise
func (c PriceChart) GetIndicatorForDate(target time.Time) (Indicators, bool) {
	targetDay := target.UTC().Truncate(24 * time.Hour)
	for _, ind := range c.Indicators {
		if ind.Date.UTC().Truncate(24 * time.Hour).Equal(targetDay) {
			return ind, true
		}
	}
	return Indicators{}, false
}

// Closes returns the daily closes as a price series.
func (c PriceChart) Closes() model.PriceSeries {
	series := make(model.PriceSeries, 0, len(c.Indicators))
	for _, ind := range c.Indicators {
		series = append(series, model.PricePoint{
			Date:  ind.Date,
			Value: decimal.NewFromFloat(ind.PriceClose),
		})
	}
	return series
}

// LatestClose returns the most recent close of the chart.
func (c PriceChart) LatestClose() (model.PricePoint, bool) {
	if len(c.Indicators) == 0 {
		return model.PricePoint{}, false
	}
	last := c.Indicators[len(c.Indicators)-1]
	return model.PricePoint{Date: last.Date, Value: decimal.NewFromFloat(last.PriceClose)}, true
}

// DividendEvents returns the chart's dividends attributed to ticker.
func (c PriceChart) DividendEvents(ticker string) []model.DividendEvent {
	events := make([]model.DividendEvent, 0, len(c.Dividends))
	for _, d := range c.Dividends {
		events = append(events, model.DividendEvent{
			Ticker:         ticker,
			ExDate:         d.ExDate,
			AmountPerShare: decimal.NewFromFloat(d.Amount),
		})
	}
	return events
}

// QueryYahooFiveDaySymbol fetches the last 5 days of daily price data for a symbol.
// Typically used to get the latest available closing price.
//
// Parameters:
//   - ctx: bounds the HTTP request
//   - symbol: Yahoo ticker symbol (e.g., "PETR4.SA", "^BVSP")
//
// Returns:
//   - Response: Raw API response containing price data
//   - error: If the HTTP request fails, API returns an error, or no results found
func (c *FinanceClient) QueryYahooFiveDaySymbol(ctx context.Context, symbol string) (Response, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "5d")
	return c.queryChart(ctx, symbol, params)
}

// QueryYahooSymbolByDateRange fetches daily price data for a symbol within a specific date range.
//
// Parameters:
//   - ctx: bounds the HTTP request
//   - symbol: Yahoo ticker symbol
//   - startDate: Beginning of date range (inclusive)
//   - endDate: End of date range (inclusive)
//
// Returns:
//   - Response: Raw API response containing price data for the range
//   - error: If the HTTP request fails, API returns an error, or no results found
func (c *FinanceClient) QueryYahooSymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", fmt.Sprint(startDate.Unix()))
	// period2 is exclusive on Yahoo's side
	params.Set("period2", fmt.Sprint(endDate.AddDate(0, 0, 1).Unix()))
	return c.queryChart(ctx, symbol, params)
}

// QueryDividendHistory fetches the full dividend history of a symbol.
func (c *FinanceClient) QueryDividendHistory(ctx context.Context, symbol string) (Response, error) {
	params := url.Values{}
	params.Set("interval", "1mo")
	params.Set("range", "max")
	params.Set("events", "div")
	return c.queryChart(ctx, symbol, params)
}

func (c *FinanceClient) queryChart(ctx context.Context, symbol string, params url.Values) (Response, error) {
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())
	result, err := c.queryYahoo(ctx, endpoint)
	if err != nil {
		return Response{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("no results returned for symbol %s: %w", symbol, apperrors.ErrSymbolNotFound)
	}
	return result, nil
}

// queryYahoo executes an HTTP request to the Yahoo Finance API, reads and
// parses the response and checks for API errors.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) queryYahoo(ctx context.Context, endpoint string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		if resp.StatusCode == http.StatusNotFound {
			return Response{}, fmt.Errorf("yahoo returned status %d: %w", resp.StatusCode, apperrors.ErrSymbolNotFound)
		}
		if resp.StatusCode != http.StatusOK {
			return Response{}, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
		}
		return Response{}, err
	}

	if e := response.Chart.Error; e != nil {
		if e.Code == notFoundCode || resp.StatusCode == http.StatusNotFound {
			return response, fmt.Errorf("yahoo error: %s: %s: %w", e.Code, e.Description, apperrors.ErrSymbolNotFound)
		}
		return response, fmt.Errorf("yahoo error: %s: %s", e.Code, e.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	return response, nil
}

func sessionDate(ts, offset int64) time.Time {
	return time.Unix(ts+offset, 0).UTC().Truncate(24 * time.Hour)
}

func floatAt(values []*float64, i int) float64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}

func intAt(values []*int64, i int) int64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}
