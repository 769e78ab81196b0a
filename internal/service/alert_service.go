package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/carteira-app/carteira/internal/accounting"
	"github.com/carteira-app/carteira/internal/api/request"
	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/model"
	"github.com/carteira-app/carteira/internal/repository"
	"github.com/carteira-app/carteira/internal/validation"
)

// Notifier delivers triggered alerts to their owner.
type Notifier interface {
	Notify(ctx context.Context, triggered model.TriggeredAlert) error
}

// LogNotifier writes triggered alerts to the log. It is the default when no
// delivery channel is configured.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notifier").Logger()}
}

// Notify logs the triggered alert.
func (n *LogNotifier) Notify(_ context.Context, triggered model.TriggeredAlert) error {
	n.log.Info().
		Str("owner", triggered.Alert.Owner).
		Str("ticker", triggered.Alert.Ticker).
		Str("target", triggered.Alert.TargetPrice.String()).
		Str("price", triggered.CurrentPrice.String()).
		Msg("price alert triggered")
	return nil
}

// AlertService manages price alerts and checks them against the latest quotes.
type AlertService struct {
	alertRepo *repository.AlertRepository
	snapshot  snapshotLoader
	prices    PriceFeed
	notifier  Notifier
	log       zerolog.Logger
}

// NewAlertService creates a new AlertService.
func NewAlertService(
	alertRepo *repository.AlertRepository,
	transactionRepo *repository.TransactionRepository,
	prices PriceFeed,
	notifier Notifier,
	concurrency int,
	log zerolog.Logger,
) *AlertService {
	return &AlertService{
		alertRepo: alertRepo,
		snapshot:  newSnapshotLoader(transactionRepo, concurrency),
		prices:    prices,
		notifier:  notifier,
		log:       log.With().Str("component", "alerts").Logger(),
	}
}

// GetAlerts lists every alert of the owner, triggered ones included.
func (s *AlertService) GetAlerts(ctx context.Context, owner string) ([]model.PriceAlert, error) {
	alerts, err := s.alertRepo.GetAlerts(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveAlerts, err)
	}
	return alerts, nil
}

// SetAlert registers or re-arms the owner's alert for a ticker.
// A target price of zero or less removes the alert and returns nil.
func (s *AlertService) SetAlert(ctx context.Context, owner string, req request.SetAlertRequest) (*model.PriceAlert, error) {
	ticker := validation.NormalizeTicker(req.Ticker)

	if !req.TargetPrice.IsPositive() {
		err := s.alertRepo.DeleteAlert(ctx, owner, ticker)
		if err != nil && !errors.Is(err, apperrors.ErrAlertNotFound) {
			return nil, err
		}
		s.log.Info().Str("owner", owner).Str("ticker", ticker).Msg("alert removed")
		return nil, nil
	}

	alert := &model.PriceAlert{
		Owner:       owner,
		Ticker:      ticker,
		TargetPrice: req.TargetPrice,
	}
	if err := s.alertRepo.UpsertAlert(ctx, alert); err != nil {
		return nil, err
	}
	s.log.Info().Str("owner", owner).Str("ticker", ticker).Str("target", alert.TargetPrice.String()).Msg("alert set")
	return alert, nil
}

// Check compares the owner's active alerts on currently held tickers with
// their latest price. Alerts whose price reached the target are marked
// triggered, passed to the notifier and returned. Tickers without a quote are
// skipped until the next check.
func (s *AlertService) Check(ctx context.Context, owner string) ([]model.TriggeredAlert, error) {
	alerts, err := s.alertRepo.GetActiveAlerts(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveAlerts, err)
	}
	if len(alerts) == 0 {
		return []model.TriggeredAlert{}, nil
	}

	txs, err := s.snapshot.ledger(ctx, owner)
	if err != nil {
		return nil, err
	}
	held := accounting.Consolidate(txs).Holdings

	watched := make([]string, 0, len(alerts))
	for _, a := range alerts {
		if _, ok := held[a.Ticker]; ok {
			watched = append(watched, a.Ticker)
		}
	}

	quotes, failed, err := fetchEach(ctx, s.snapshot.concurrency, watched, s.prices.LatestPrice)
	if err != nil {
		return nil, aborted(s.log, "alerts", err)
	}
	for ticker, ferr := range failed {
		s.log.Debug().Err(ferr).Str("ticker", ticker).Msg("no quote for alert")
	}

	triggered := make([]model.TriggeredAlert, 0)
	for _, a := range alerts {
		price, ok := quotes[a.Ticker]
		if !ok || price.LessThan(a.TargetPrice) {
			continue
		}

		at := s.snapshot.now()
		if err := s.alertRepo.MarkTriggered(ctx, a.ID, at); err != nil {
			// another check got there first
			if errors.Is(err, apperrors.ErrAlertNotFound) {
				continue
			}
			return triggered, err
		}
		a.Status = model.AlertTriggered
		a.TriggeredAt = &at

		t := model.TriggeredAlert{Alert: a, CurrentPrice: price}
		if err := s.notifier.Notify(ctx, t); err != nil {
			s.log.Error().Err(err).Str("owner", owner).Str("ticker", a.Ticker).Msg("failed to notify alert")
		}
		triggered = append(triggered, t)
	}

	return triggered, nil
}

// CheckAll runs Check for every owner with active alerts and returns how many
// alerts triggered. A failing owner is logged and does not stop the sweep.
func (s *AlertService) CheckAll(ctx context.Context) (int, error) {
	owners, err := s.alertRepo.GetActiveAlertOwners(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveAlerts, err)
	}

	total := 0
	for _, owner := range owners {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		triggered, err := s.Check(ctx, owner)
		if err != nil {
			s.log.Error().Err(err).Str("owner", owner).Msg("alert check failed")
			continue
		}
		total += len(triggered)
	}
	return total, nil
}
