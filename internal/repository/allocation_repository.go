package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/carteira-app/carteira/internal/model"
)

// AllocationRepository provides data access methods for the target_allocation table.
type AllocationRepository struct {
	db *sql.DB
}

// NewAllocationRepository creates a new AllocationRepository with the provided database connection.
func NewAllocationRepository(db *sql.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// GetAllocation retrieves owner's target allocation sorted by ticker.
func (r *AllocationRepository) GetAllocation(ctx context.Context, owner string) ([]model.TargetAllocation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ticker, percentage
		FROM target_allocation
		WHERE owner = ?
		ORDER BY ticker ASC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query target_allocation table: %w", err)
	}
	defer rows.Close()

	targets := []model.TargetAllocation{}
	for rows.Next() {
		var (
			t       model.TargetAllocation
			percent string
		)
		if err := rows.Scan(&t.Ticker, &percent); err != nil {
			return nil, fmt.Errorf("failed to scan target_allocation table results: %w", err)
		}
		if t.Percentage, err = parseDecimal(percent); err != nil {
			return nil, fmt.Errorf("allocation %s: %w", t.Ticker, err)
		}
		targets = append(targets, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating target_allocation table: %w", err)
	}

	return targets, nil
}

// ReplaceAllocation atomically replaces owner's whole target allocation.
func (r *AllocationRepository) ReplaceAllocation(ctx context.Context, owner string, targets []model.TargetAllocation) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM target_allocation WHERE owner = ?`, owner); err != nil {
			return fmt.Errorf("failed to clear target_allocation: %w", err)
		}
		for _, t := range targets {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO target_allocation (owner, ticker, percentage)
				VALUES (?, ?, ?)
			`, owner, t.Ticker, t.Percentage.String())
			if err != nil {
				return fmt.Errorf("failed to insert target_allocation %s: %w", t.Ticker, err)
			}
		}
		return nil
	})
}
