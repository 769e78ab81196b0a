package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrAlertNotFound indicates that the owner has no alert for the ticker.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrWatchlistItemNotFound indicates that the owner does not follow the ticker.
	ErrWatchlistItemNotFound = errors.New("ticker not in watchlist")

	// ErrBenchmarkNotFound indicates a benchmark name outside the catalog.
	ErrBenchmarkNotFound = errors.New("benchmark not found")

	// ErrSymbolNotFound indicates that a symbol lookup returned no results
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrInvalidOwner indicates a missing or malformed owner identifier.
	ErrInvalidOwner = errors.New("owner is required")

	// ErrAllocationExceeds indicates target percentages summing above 100.
	ErrAllocationExceeds = errors.New("target allocation exceeds 100%")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	// ErrDataUnavailable is the single condition surfaced for unexpected
	// failures of external data or computation. The raw cause is only logged.
	ErrDataUnavailable = errors.New("data temporarily unavailable")

	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToRetrieveAlerts       = errors.New("failed to retrieve alerts")
	ErrFailedToRetrieveAllocation   = errors.New("failed to retrieve allocation")
	ErrFailedToRetrieveWatchlist    = errors.New("failed to retrieve watchlist")

	// System operation errors
	ErrFailedToGetVersionInfo = errors.New("failed to get version information")
)
