package request

import "github.com/shopspring/decimal"

// AllocationTarget is one ticker's target share, in percent.
type AllocationTarget struct {
	Ticker     string          `json:"ticker"`
	Percentage decimal.Decimal `json:"percentage"`
}

// SetAllocationRequest replaces the whole set of target percentages of an owner.
type SetAllocationRequest struct {
	Targets []AllocationTarget `json:"targets"`
}
