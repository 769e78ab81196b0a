package accounting

import "errors"

var (
	// ErrEmptyLedger indicates the owner has no transactions. Callers should
	// render an explicit empty portfolio rather than treating it as a failure.
	ErrEmptyLedger = errors.New("empty portfolio")

	// ErrMissingCostBasis indicates a ticker was sold without any buy to derive
	// a weighted average cost from.
	ErrMissingCostBasis = errors.New("no cost basis available")

	// ErrNoPriceData indicates the price feed returned no data for a ticker or range.
	ErrNoPriceData = errors.New("no price data")

	// ErrNoSeries indicates a time series could not be reconstructed.
	ErrNoSeries = errors.New("no series available")

	// ErrBenchmarkUnavailable indicates a benchmark could not be aligned or normalized.
	ErrBenchmarkUnavailable = errors.New("benchmark unavailable")

	// ErrZeroBase indicates a series whose first value is zero cannot be rebased.
	ErrZeroBase = errors.New("series starts at zero")

	// ErrOversell indicates a sell exceeded the quantity held at its trade date.
	ErrOversell = errors.New("sell exceeds quantity held")
)
