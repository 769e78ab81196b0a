package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/model"
)

// AlertRepository provides data access methods for the price_alert table.
// An owner has at most one alert per ticker.
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository creates a new AlertRepository with the provided database connection.
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

const alertColumns = `id, owner, ticker, target_price, status, created_at, triggered_at`

// GetAlerts retrieves every alert of owner sorted by ticker.
func (r *AlertRepository) GetAlerts(ctx context.Context, owner string) ([]model.PriceAlert, error) {
	return r.queryAlerts(ctx, `
		SELECT `+alertColumns+`
		FROM price_alert
		WHERE owner = ?
		ORDER BY ticker ASC
	`, owner)
}

// GetActiveAlerts retrieves the alerts of owner that have not triggered yet.
func (r *AlertRepository) GetActiveAlerts(ctx context.Context, owner string) ([]model.PriceAlert, error) {
	return r.queryAlerts(ctx, `
		SELECT `+alertColumns+`
		FROM price_alert
		WHERE owner = ? AND status = ?
		ORDER BY ticker ASC
	`, owner, model.AlertActive)
}

// GetActiveAlertOwners returns the owners that have at least one active alert.
func (r *AlertRepository) GetActiveAlertOwners(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT owner
		FROM price_alert
		WHERE status = ?
		ORDER BY owner ASC
	`, model.AlertActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query price_alert owners: %w", err)
	}
	defer rows.Close()

	owners := []string{}
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("failed to scan price_alert owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_alert owners: %w", err)
	}

	return owners, nil
}

// UpsertAlert sets the target price of owner's alert for ticker, re-arming it
// if it had already triggered.
func (r *AlertRepository) UpsertAlert(ctx context.Context, alert *model.PriceAlert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	createdAt := time.Now().UTC().Truncate(time.Second)

	query := `
		INSERT INTO price_alert (id, owner, ticker, target_price, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner, ticker) DO UPDATE SET
			target_price = excluded.target_price,
			status = excluded.status,
			triggered_at = NULL
	`
	_, err := r.db.ExecContext(ctx, query,
		alert.ID,
		alert.Owner,
		alert.Ticker,
		alert.TargetPrice.String(),
		model.AlertActive,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price_alert: %w", err)
	}

	stored, err := r.GetAlert(ctx, alert.Owner, alert.Ticker)
	if err != nil {
		return err
	}
	*alert = stored

	return nil
}

// GetAlert retrieves owner's alert for ticker.
// Returns apperrors.ErrAlertNotFound when there is none.
func (r *AlertRepository) GetAlert(ctx context.Context, owner, ticker string) (model.PriceAlert, error) {
	alerts, err := r.queryAlerts(ctx, `
		SELECT `+alertColumns+`
		FROM price_alert
		WHERE owner = ? AND ticker = ?
	`, owner, ticker)
	if err != nil {
		return model.PriceAlert{}, err
	}
	if len(alerts) == 0 {
		return model.PriceAlert{}, apperrors.ErrAlertNotFound
	}
	return alerts[0], nil
}

// DeleteAlert removes owner's alert for ticker.
// Returns apperrors.ErrAlertNotFound when there is none.
func (r *AlertRepository) DeleteAlert(ctx context.Context, owner, ticker string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM price_alert WHERE owner = ? AND ticker = ?`, owner, ticker)
	if err != nil {
		return fmt.Errorf("failed to delete price_alert: %w", err)
	}

	return requireAffected(result, apperrors.ErrAlertNotFound)
}

// MarkTriggered flags an active alert as triggered at the given time.
// Returns apperrors.ErrAlertNotFound if the alert is missing or already triggered.
func (r *AlertRepository) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE price_alert
		SET status = ?, triggered_at = ?
		WHERE id = ? AND status = ?
	`, model.AlertTriggered, at.UTC().Format(time.RFC3339), id, model.AlertActive)
	if err != nil {
		return fmt.Errorf("failed to update price_alert: %w", err)
	}

	return requireAffected(result, apperrors.ErrAlertNotFound)
}

func (r *AlertRepository) queryAlerts(ctx context.Context, query string, args ...any) ([]model.PriceAlert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query price_alert table: %w", err)
	}
	defer rows.Close()

	alerts := []model.PriceAlert{}
	for rows.Next() {
		var (
			a            model.PriceAlert
			targetStr    string
			createdAtStr sql.NullString
			triggeredStr sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Owner, &a.Ticker, &targetStr, &a.Status, &createdAtStr, &triggeredStr); err != nil {
			return nil, fmt.Errorf("failed to scan price_alert table results: %w", err)
		}
		if a.TargetPrice, err = parseDecimal(targetStr); err != nil {
			return nil, fmt.Errorf("alert %s: invalid target price: %w", a.ID, err)
		}
		if createdAtStr.Valid {
			if a.CreatedAt, err = ParseTime(createdAtStr.String); err != nil {
				return nil, err
			}
		}
		if triggeredStr.Valid {
			at, err := ParseTime(triggeredStr.String)
			if err != nil {
				return nil, err
			}
			a.TriggeredAt = &at
		}
		alerts = append(alerts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_alert table: %w", err)
	}

	return alerts, nil
}
