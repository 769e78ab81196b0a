package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carteira-app/carteira/internal/repository"
	"github.com/carteira-app/carteira/internal/service"
)

// NewTestPortfolioService wires a PortfolioService on db and feed.
func NewTestPortfolioService(t *testing.T, db *sql.DB, feed service.MarketData) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		repository.NewTransactionRepository(db),
		feed,
		2,
		zerolog.Nop(),
	)
}

// NewTestTransactionService wires a TransactionService on db.
func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(
		repository.NewTransactionRepository(db),
		zerolog.Nop(),
	)
}

// NewTestAlertService wires an AlertService on db, feed and notifier.
func NewTestAlertService(t *testing.T, db *sql.DB, feed service.PriceFeed, notifier service.Notifier) *service.AlertService {
	t.Helper()

	return service.NewAlertService(
		repository.NewAlertRepository(db),
		repository.NewTransactionRepository(db),
		feed,
		notifier,
		2,
		zerolog.Nop(),
	)
}

// NewTestAllocationService wires an AllocationService on db and feed.
func NewTestAllocationService(t *testing.T, db *sql.DB, feed service.PriceFeed) *service.AllocationService {
	t.Helper()

	return service.NewAllocationService(
		repository.NewAllocationRepository(db),
		repository.NewTransactionRepository(db),
		feed,
		2,
		zerolog.Nop(),
	)
}

// NewTestWatchlistService wires a WatchlistService on db and feed.
func NewTestWatchlistService(t *testing.T, db *sql.DB, feed service.PriceFeed) *service.WatchlistService {
	t.Helper()

	return service.NewWatchlistService(
		repository.NewWatchlistRepository(db),
		feed,
		2,
		zerolog.Nop(),
	)
}

// NewTestSystemService wires a SystemService on db.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeOwner generates a unique owner identifier for testing.
//
// Example usage:
//
//	owner := testutil.MakeOwner("ana")
//	// Returns: "ana.X1Y2Z3"
func MakeOwner(base string) string {
	if base == "" {
		base = "owner"
	}
	return base + "." + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
