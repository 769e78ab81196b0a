package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carteira-app/carteira/internal/api/request"
	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/model"
	"github.com/carteira-app/carteira/internal/repository"
	"github.com/carteira-app/carteira/internal/validation"
)

// TransactionService handles the ledger: the owner's append-ordered list of
// buys and sells every portfolio computation reads.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
	prices          PriceFeed
	log             zerolog.Logger
}

// NewTransactionService creates a new TransactionService with the provided repository dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
	log zerolog.Logger,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		log:             log.With().Str("component", "transactions").Logger(),
	}
}

// WithTickerCheck makes create and update reject tickers the price feed
// reports as unknown. Feed outages do not block writes.
func (s *TransactionService) WithTickerCheck(prices PriceFeed) *TransactionService {
	s.prices = prices
	return s
}

// GetTransactions retrieves the owner's ledger ordered by trade date, then insertion order.
func (s *TransactionService) GetTransactions(ctx context.Context, owner string) ([]model.TransactionResponse, error) {
	txs, err := s.transactionRepo.GetTransactions(ctx, owner)
	if err != nil {
		return nil, err
	}
	responses := make([]model.TransactionResponse, 0, len(txs))
	for _, t := range txs {
		responses = append(responses, toTransactionResponse(t))
	}
	return responses, nil
}

// GetTransaction retrieves a single ledger entry of the owner.
func (s *TransactionService) GetTransaction(ctx context.Context, owner, id string) (model.TransactionResponse, error) {
	t, err := s.transactionRepo.GetTransaction(ctx, owner, id)
	if err != nil {
		return model.TransactionResponse{}, err
	}
	return toTransactionResponse(t), nil
}

// CreateTransaction appends a validated entry to the owner's ledger.
// The ticker is normalized (B3 tickers get the ".SA" suffix).
func (s *TransactionService) CreateTransaction(ctx context.Context, owner string, req request.CreateTransactionRequest) (model.TransactionResponse, error) {
	transaction, err := newTransaction(owner, req)
	if err != nil {
		return model.TransactionResponse{}, err
	}

	if err := s.checkTicker(ctx, transaction.Ticker); err != nil {
		return model.TransactionResponse{}, err
	}

	if err := s.transactionRepo.InsertTransaction(ctx, transaction); err != nil {
		return model.TransactionResponse{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.log.Info().
		Str("owner", owner).
		Str("id", transaction.ID).
		Str("ticker", transaction.Ticker).
		Str("side", string(transaction.Side)).
		Msg("transaction created")

	return toTransactionResponse(*transaction), nil
}

// ImportTransactions appends a batch of validated entries to the owner's
// ledger atomically, preserving their order. Each distinct ticker is checked
// once when a ticker check is configured.
func (s *TransactionService) ImportTransactions(ctx context.Context, owner string, req request.ImportTransactionsRequest) ([]model.TransactionResponse, error) {
	batch := make([]*model.Transaction, 0, len(req.Transactions))
	checked := make(map[string]bool)
	for i, r := range req.Transactions {
		t, err := newTransaction(owner, r)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if !checked[t.Ticker] {
			if err := s.checkTicker(ctx, t.Ticker); err != nil {
				return nil, err
			}
			checked[t.Ticker] = true
		}
		batch = append(batch, t)
	}

	if err := s.transactionRepo.InsertTransactions(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to import transactions: %w", err)
	}
	s.log.Info().Str("owner", owner).Int("count", len(batch)).Msg("transactions imported")

	responses := make([]model.TransactionResponse, 0, len(batch))
	for _, t := range batch {
		responses = append(responses, toTransactionResponse(*t))
	}
	return responses, nil
}

// UpdateTransaction changes the fields present in req. The entry keeps its
// insertion sequence, so its position among same-day entries is unchanged.
func (s *TransactionService) UpdateTransaction(
	ctx context.Context,
	owner, id string,
	req request.UpdateTransactionRequest,
) (model.TransactionResponse, error) {
	t, err := s.transactionRepo.GetTransaction(ctx, owner, id)
	if err != nil {
		return model.TransactionResponse{}, err
	}

	if req.Ticker != nil {
		t.Ticker = validation.NormalizeTicker(*req.Ticker)
		if err := s.checkTicker(ctx, t.Ticker); err != nil {
			return model.TransactionResponse{}, err
		}
	}
	if req.Side != nil {
		t.Side = model.Side(strings.ToLower(*req.Side))
	}
	if req.Quantity != nil {
		t.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		t.UnitPrice = *req.UnitPrice
	}
	if req.Date != nil {
		tradeDate, err := time.Parse(time.DateOnly, *req.Date)
		if err != nil {
			return model.TransactionResponse{}, err
		}
		t.TradeDate = tradeDate
	}

	if err := s.transactionRepo.UpdateTransaction(ctx, t); err != nil {
		return model.TransactionResponse{}, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.log.Info().Str("owner", owner).Str("id", id).Msg("transaction updated")
	return toTransactionResponse(t), nil
}

// DeleteTransaction removes an entry from the owner's ledger.
func (s *TransactionService) DeleteTransaction(ctx context.Context, owner, id string) error {
	if err := s.transactionRepo.DeleteTransaction(ctx, owner, id); err != nil {
		return err
	}
	s.log.Info().Str("owner", owner).Str("id", id).Msg("transaction deleted")
	return nil
}

// newTransaction builds a ledger entry with a fresh ID from a validated request.
func newTransaction(owner string, req request.CreateTransactionRequest) (*model.Transaction, error) {
	tradeDate, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		return nil, err
	}
	return &model.Transaction{
		ID:        uuid.New().String(),
		Owner:     owner,
		Ticker:    validation.NormalizeTicker(req.Ticker),
		Side:      model.Side(strings.ToLower(req.Side)),
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		TradeDate: tradeDate,
	}, nil
}

func (s *TransactionService) checkTicker(ctx context.Context, ticker string) error {
	if s.prices == nil {
		return nil
	}
	return verifyTicker(ctx, s.prices, ticker, s.log)
}

// verifyTicker returns a validation error when the feed does not know ticker.
// Any other feed failure is logged and the ticker accepted.
func verifyTicker(ctx context.Context, prices PriceFeed, ticker string, log zerolog.Logger) error {
	_, err := prices.LatestPrice(ctx, ticker)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrSymbolNotFound):
		return &validation.Error{Fields: map[string]string{"ticker": fmt.Sprintf("unknown ticker: %s", ticker)}}
	default:
		log.Warn().Err(err).Str("ticker", ticker).Msg("ticker check skipped")
		return nil
	}
}

func toTransactionResponse(t model.Transaction) model.TransactionResponse {
	return model.TransactionResponse{
		ID:        t.ID,
		Owner:     t.Owner,
		Ticker:    t.Ticker,
		Side:      t.Side,
		Quantity:  round(t.Quantity, QuantityPlaces),
		UnitPrice: round(t.UnitPrice, MoneyPlaces),
		Total:     round(t.Amount(), MoneyPlaces),
		TradeDate: formatDate(t.TradeDate),
	}
}
