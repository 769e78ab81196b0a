package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/model"
)

// WatchlistRepository provides data access methods for the watchlist table.
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a new WatchlistRepository with the provided database connection.
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// GetWatchlist retrieves owner's followed tickers sorted by ticker.
func (r *WatchlistRepository) GetWatchlist(ctx context.Context, owner string) ([]model.WatchlistItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ticker, created_at
		FROM watchlist
		WHERE owner = ?
		ORDER BY ticker ASC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist table: %w", err)
	}
	defer rows.Close()

	items := []model.WatchlistItem{}
	for rows.Next() {
		var (
			item         model.WatchlistItem
			createdAtStr sql.NullString
		)
		if err := rows.Scan(&item.Ticker, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist table results: %w", err)
		}
		if createdAtStr.Valid {
			if item.AddedAt, err = ParseTime(createdAtStr.String); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist table: %w", err)
	}

	return items, nil
}

// AddTicker follows ticker for owner. Following a ticker twice is a no-op;
// added reports whether a new row was created.
func (r *WatchlistRepository) AddTicker(ctx context.Context, owner, ticker string) (added bool, err error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO watchlist (owner, ticker)
		VALUES (?, ?)
		ON CONFLICT (owner, ticker) DO NOTHING
	`, owner, ticker)
	if err != nil {
		return false, fmt.Errorf("failed to insert watchlist: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// RemoveTicker stops following ticker.
// Returns apperrors.ErrWatchlistItemNotFound if owner did not follow it.
func (r *WatchlistRepository) RemoveTicker(ctx context.Context, owner, ticker string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE owner = ? AND ticker = ?`, owner, ticker)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist: %w", err)
	}

	return requireAffected(result, apperrors.ErrWatchlistItemNotFound)
}
