package model

import "github.com/shopspring/decimal"

// TargetAllocation is the share of the portfolio an owner wants a ticker to have, in percent.
type TargetAllocation struct {
	Ticker     string          `json:"ticker"`
	Percentage decimal.Decimal `json:"percentage"`
}

// AllocationEntry compares the current and target share of a held ticker.
type AllocationEntry struct {
	Ticker         string   `json:"ticker"`
	CurrentPercent float64  `json:"currentPercent"`
	TargetPercent  *float64 `json:"targetPercent,omitempty"`
	Difference     *float64 `json:"difference,omitempty"`
}

// AllocationComparison is the current vs. target distribution of an owner's holdings.
type AllocationComparison struct {
	Owner   string            `json:"owner"`
	Entries []AllocationEntry `json:"entries"`
	// TargetTotal is the sum of the targets for tickers still held.
	TargetTotal float64 `json:"targetTotal"`
}
