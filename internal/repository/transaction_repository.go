package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/model"
)

// TransactionRepository provides data access methods for the ledger_transaction table.
// It is the ledger source of the accounting engine: every read returns a
// snapshot ordered by trade date, ties broken by insertion order.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *TransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const transactionColumns = `seq, id, owner, ticker, side, quantity, unit_price, trade_date, created_at`

// GetTransactions retrieves the full ledger of owner.
//
// Parameters:
//   - ctx: request context
//   - owner: ledger owner
//
// Returns the transactions sorted by trade_date then seq. An owner without
// transactions yields an empty, non-nil slice.
func (r *TransactionRepository) GetTransactions(ctx context.Context, owner string) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM ledger_transaction
		WHERE owner = ?
		ORDER BY trade_date ASC, seq ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger_transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger_transaction table: %w", err)
	}

	return transactions, nil
}

// GetTransaction retrieves a single transaction of owner.
// Returns apperrors.ErrTransactionNotFound when it does not exist.
func (r *TransactionRepository) GetTransaction(ctx context.Context, owner, id string) (model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM ledger_transaction
		WHERE owner = ? AND id = ?
	`

	t, err := scanTransaction(r.getQuerier().QueryRowContext(ctx, query, owner, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}

	return t, nil
}

// InsertTransaction appends t to the ledger and fills in its Seq and CreatedAt.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO ledger_transaction (id, owner, ticker, side, quantity, unit_price, trade_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := time.Now().UTC().Truncate(time.Second)
	result, err := r.getQuerier().ExecContext(ctx, query,
		t.ID,
		t.Owner,
		t.Ticker,
		string(t.Side),
		t.Quantity.String(),
		t.UnitPrice.String(),
		t.TradeDate.Format(dateLayout),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read transaction sequence: %w", err)
	}
	t.Seq = seq
	t.CreatedAt = createdAt

	return nil
}

// InsertTransactions appends every transaction in a single database
// transaction: either all of them are stored or none is.
func (r *TransactionRepository) InsertTransactions(ctx context.Context, ts []*model.Transaction) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		txRepo := r.WithTx(tx)
		for i, t := range ts {
			if err := txRepo.InsertTransaction(ctx, t); err != nil {
				return fmt.Errorf("transaction %d: %w", i, err)
			}
		}
		return nil
	})
}

// UpdateTransaction rewrites the mutable fields of an existing transaction.
// The insertion sequence is kept, so same-day ordering is stable across edits.
// Returns apperrors.ErrTransactionNotFound when it does not exist.
func (r *TransactionRepository) UpdateTransaction(ctx context.Context, t model.Transaction) error {
	query := `
		UPDATE ledger_transaction
		SET ticker = ?, side = ?, quantity = ?, unit_price = ?, trade_date = ?
		WHERE owner = ? AND id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		t.Ticker,
		string(t.Side),
		t.Quantity.String(),
		t.UnitPrice.String(),
		t.TradeDate.Format(dateLayout),
		t.Owner,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	return requireAffected(result, apperrors.ErrTransactionNotFound)
}

// DeleteTransaction removes a transaction of owner.
// Returns apperrors.ErrTransactionNotFound when it does not exist.
func (r *TransactionRepository) DeleteTransaction(ctx context.Context, owner, id string) error {
	query := `DELETE FROM ledger_transaction WHERE owner = ? AND id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query, owner, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	return requireAffected(result, apperrors.ErrTransactionNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		t                     model.Transaction
		side                  string
		dateStr               string
		createdAtStr          sql.NullString
		quantityStr, priceStr string
	)

	err := row.Scan(
		&t.Seq,
		&t.ID,
		&t.Owner,
		&t.Ticker,
		&side,
		&quantityStr,
		&priceStr,
		&dateStr,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return t, err
	}
	if err != nil {
		return t, fmt.Errorf("failed to scan ledger_transaction table results: %w", err)
	}

	t.Side = model.Side(side)
	if t.Quantity, err = parseDecimal(quantityStr); err != nil {
		return t, fmt.Errorf("transaction %s: invalid quantity: %w", t.ID, err)
	}
	if t.UnitPrice, err = parseDecimal(priceStr); err != nil {
		return t, fmt.Errorf("transaction %s: invalid unit price: %w", t.ID, err)
	}

	t.TradeDate, err = ParseTime(dateStr)
	if err != nil || t.TradeDate.IsZero() {
		return t, fmt.Errorf("failed to parse date: %w", err)
	}

	if createdAtStr.Valid {
		if t.CreatedAt, err = ParseTime(createdAtStr.String); err != nil {
			return t, fmt.Errorf("failed to parse created_at: %w", err)
		}
	}

	return t, nil
}
