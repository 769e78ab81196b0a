package model

// HoldingSummary is the current state of one ticker still held by an owner.
// Market fields are nil when the price feed returned no quote for the ticker.
type HoldingSummary struct {
	Ticker             string   `json:"ticker"`
	Quantity           float64  `json:"quantity"`
	AverageCost        float64  `json:"averageCost"`
	TotalCost          float64  `json:"totalCost"`
	LatestPrice        *float64 `json:"latestPrice"`
	CurrentValue       *float64 `json:"currentValue"`
	UnrealizedGainLoss *float64 `json:"unrealizedGainLoss"`
	VariationPercent   *float64 `json:"variationPercent"`
	PortfolioPercent   *float64 `json:"portfolioPercent"`
}

// Oversell describes a sell that exceeded the quantity held at its trade date.
type Oversell struct {
	TransactionID string  `json:"transactionId"`
	Ticker        string  `json:"ticker"`
	TradeDate     string  `json:"tradeDate"`
	Requested     float64 `json:"requested"`
	Available     float64 `json:"available"`
	Message       string  `json:"message"`
}

// PortfolioSummary is the current state of an owner's portfolio.
// When Empty is true the owner has no transactions and every other field is zero.
// Realized gains and losses are always reported separately; losses are <= 0.
type PortfolioSummary struct {
	Owner                string             `json:"owner"`
	Empty                bool               `json:"empty"`
	Holdings             []HoldingSummary   `json:"holdings"`
	TotalInvested        float64            `json:"totalInvested"`        // Cost of current holdings
	TotalValue           float64            `json:"totalValue"`           // Market value of quoted holdings
	UnrealizedGainLoss   float64            `json:"unrealizedGainLoss"`   // Net unrealized
	UnrealizedGains      float64            `json:"unrealizedGains"`      // Sum of positive unrealized
	UnrealizedLosses     float64            `json:"unrealizedLosses"`     // Sum of negative unrealized
	RealizedGains        float64            `json:"realizedGains"`        // Sum of positive realized
	RealizedLosses       float64            `json:"realizedLosses"`       // Sum of negative realized
	RealizedNet          float64            `json:"realizedNet"`          // RealizedGains + RealizedLosses
	TotalDividends       float64            `json:"totalDividends"`       // Attributed dividend income
	RealizedEvents       []RealizedGainLoss `json:"realizedEvents"`       // One per sell
	MissingQuotes        []string           `json:"missingQuotes"`        // Held tickers without a latest price
	MissingCostBasis     []string           `json:"missingCostBasis"`     // Tickers sold without any buy
	DividendsUnavailable []string           `json:"dividendsUnavailable"` // Tickers whose dividend history failed to load
	Oversells            []Oversell         `json:"oversells"`
}

// SeriesPoint is a single dated value of a chart series.
type SeriesPoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Value float64 `json:"value"`
}

// DroppedBenchmark names a requested benchmark that could not be normalized.
type DroppedBenchmark struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// EvolutionChart is the portfolio value/cost evolution together with its
// base-100 comparison against benchmarks.
//
// Normalized is keyed by series name: "portfolio", "cost" and every benchmark
// that could be normalized. Order lists the keys in presentation order.
type EvolutionChart struct {
	Owner         string                   `json:"owner"`
	Empty         bool                     `json:"empty"`
	Available     bool                     `json:"available"`
	Value         []SeriesPoint            `json:"value"`
	Cost          []SeriesPoint            `json:"cost"`
	Normalized    map[string][]SeriesPoint `json:"normalized"`
	Order         []string                 `json:"order"`
	Dropped       []DroppedBenchmark       `json:"dropped"`
	MissingPrices []string                 `json:"missingPrices"`
}
