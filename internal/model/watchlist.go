package model

import "time"

// WatchlistItem is a ticker an owner follows without holding it.
type WatchlistItem struct {
	Ticker  string    `json:"ticker"`
	AddedAt time.Time `json:"addedAt"`
}

// WatchlistEntry is a followed ticker with its last two closes.
// Quote fields are nil when the price feed had no recent session for it.
type WatchlistEntry struct {
	Ticker        string    `json:"ticker"`
	AddedAt       time.Time `json:"addedAt"`
	QuoteDate     string    `json:"quoteDate,omitempty"`
	Price         *float64  `json:"price"`
	PreviousClose *float64  `json:"previousClose"`
	ChangePercent *float64  `json:"changePercent"`
}

// Watchlist is an owner's followed tickers, sorted by ticker.
type Watchlist struct {
	Owner         string           `json:"owner"`
	Entries       []WatchlistEntry `json:"entries"`
	MissingQuotes []string         `json:"missingQuotes"`
}
