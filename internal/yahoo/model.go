package yahoo

import "time"

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
//
// The structure includes:
//   - Chart.Result: Array of result objects (typically contains one element)
//   - Chart.Result[].Meta: Symbol metadata (name, currency, exchange, UTC offset)
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: Price data arrays; entries are null on days without trading
//   - Chart.Result[].Events: Dividend events when requested with events=div
//   - Chart.Error: Optional error from the Yahoo API
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart is the top-level chart envelope.
type Chart struct {
	Result []Result `json:"result"`
	Error  *Error   `json:"error"`
}

// Error is the error object Yahoo returns instead of results.
type Error struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result is the chart of a single symbol.
type Result struct {
	Meta       Meta                `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators IndicatorsContainer `json:"indicators"`
	Events     *Events             `json:"events,omitempty"`
}

// Meta holds symbol metadata.
type Meta struct {
	Currency           string  `json:"currency"`
	Symbol             string  `json:"symbol"`
	ExchangeName       string  `json:"exchangeName"`
	FullExchangeName   string  `json:"fullExchangeName"`
	LongName           string  `json:"longName"`
	Shortname          string  `json:"shortName"`
	GmtOffset          int64   `json:"gmtoffset"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

// IndicatorsContainer holds the OHLCV arrays.
type IndicatorsContainer struct {
	Quote []Quote `json:"quote"`
}

// Quote holds OHLCV arrays aligned with Result.Timestamp. Pointers are nil
// where Yahoo returned null.
type Quote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
}

// Events holds corporate events returned with events=div.
type Events struct {
	Dividends map[string]DividendEvent `json:"dividends"`
}

// DividendEvent is a raw dividend entry, keyed by its timestamp in Events.Dividends.
type DividendEvent struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

// PriceChart represents a parsed and structured price chart from Yahoo Finance.
// This is the application's internal representation after parsing the raw Response.
type PriceChart struct {
	Currency         string       `json:"currency"`
	Symbol           string       `json:"symbol"`
	ExchangeName     string       `json:"exchangeName"`
	FullExchangeName string       `json:"fullExchangeName"`
	LongName         string       `json:"longName"`
	Shortname        string       `json:"shortName"`
	Indicators       []Indicators `json:"indicators"`
	Dividends        []Dividend   `json:"dividends"`
}

// Indicators represents a single trading day of a financial instrument.
//
// Fields:
//   - Date: Trading date in the exchange's calendar, at midnight UTC
//   - PriceOpen, PriceHigh, PriceLow: zero when Yahoo returned null
//   - PriceClose: Closing price for the day (split-adjusted by Yahoo)
//   - Volume: Number of shares traded during the day
type Indicators struct {
	Date       time.Time
	PriceOpen  float64
	PriceClose float64
	Volume     int64
	PriceHigh  float64
	PriceLow   float64
}

// Dividend is a parsed dividend event.
type Dividend struct {
	ExDate time.Time `json:"exDate"`
	Amount float64   `json:"amount"`
}
