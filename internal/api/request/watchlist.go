package request

// AddWatchlistRequest follows a ticker.
type AddWatchlistRequest struct {
	Ticker string `json:"ticker"`
}
