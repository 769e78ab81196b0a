package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/accounting"
	"github.com/carteira-app/carteira/internal/api/request"
	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/model"
	"github.com/carteira-app/carteira/internal/repository"
	"github.com/carteira-app/carteira/internal/validation"
)

var hundred = decimal.NewFromInt(100)

// AllocationService compares the current distribution of an owner's holdings
// with the target percentages they set.
type AllocationService struct {
	allocationRepo *repository.AllocationRepository
	snapshot       snapshotLoader
	prices         PriceFeed
	log            zerolog.Logger
}

// NewAllocationService creates a new AllocationService.
func NewAllocationService(
	allocationRepo *repository.AllocationRepository,
	transactionRepo *repository.TransactionRepository,
	prices PriceFeed,
	concurrency int,
	log zerolog.Logger,
) *AllocationService {
	return &AllocationService{
		allocationRepo: allocationRepo,
		snapshot:       newSnapshotLoader(transactionRepo, concurrency),
		prices:         prices,
		log:            log.With().Str("component", "allocation").Logger(),
	}
}

// Compare returns, for each current holding, its share of the quoted market
// value and its target share. Targets for tickers no longer held are ignored.
// Holdings without a quote have a current share of zero.
func (s *AllocationService) Compare(ctx context.Context, owner string) (cmp model.AllocationComparison, err error) {
	defer recoverUnavailable(s.log, "allocation", &err)

	txs, err := s.snapshot.ledger(ctx, owner)
	if err != nil {
		return model.AllocationComparison{}, err
	}
	targets, err := s.allocationRepo.GetAllocation(ctx, owner)
	if err != nil {
		return model.AllocationComparison{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveAllocation, err)
	}

	pos := accounting.Consolidate(txs)
	quotes, _, err := fetchEach(ctx, s.snapshot.concurrency, pos.Tickers(), s.prices.LatestPrice)
	if err != nil {
		return model.AllocationComparison{}, aborted(s.log, "allocation", err)
	}
	valuation := accounting.Valuate(pos, quotes)

	byTicker := make(map[string]decimal.Decimal, len(targets))
	for _, t := range targets {
		byTicker[t.Ticker] = t.Percentage
	}

	cmp = model.AllocationComparison{
		Owner:   owner,
		Entries: make([]model.AllocationEntry, 0, len(valuation.Holdings)),
	}
	targetTotal := decimal.Zero
	for _, v := range valuation.Holdings {
		entry := model.AllocationEntry{
			Ticker:         v.Ticker,
			CurrentPercent: round(v.Weight, PercentPlaces),
		}
		if target, ok := byTicker[v.Ticker]; ok {
			targetTotal = targetTotal.Add(target)
			entry.TargetPercent = roundPtr(target, PercentPlaces)
			entry.Difference = roundPtr(target.Sub(v.Weight), PercentPlaces)
		}
		cmp.Entries = append(cmp.Entries, entry)
	}
	cmp.TargetTotal = round(targetTotal, PercentPlaces)

	return cmp, nil
}

// SetAllocation replaces the owner's whole set of targets. Tickers are
// normalized and targets of zero are dropped; the remaining percentages may
// not add up to more than 100.
func (s *AllocationService) SetAllocation(ctx context.Context, owner string, req request.SetAllocationRequest) ([]model.TargetAllocation, error) {
	targets := make([]model.TargetAllocation, 0, len(req.Targets))
	total := decimal.Zero
	for _, t := range req.Targets {
		if !t.Percentage.IsPositive() {
			continue
		}
		total = total.Add(t.Percentage)
		targets = append(targets, model.TargetAllocation{
			Ticker:     validation.NormalizeTicker(t.Ticker),
			Percentage: t.Percentage,
		})
	}
	if total.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: %s%%", apperrors.ErrAllocationExceeds, total.String())
	}

	if err := s.allocationRepo.ReplaceAllocation(ctx, owner, targets); err != nil {
		return nil, err
	}
	s.log.Info().Str("owner", owner).Int("targets", len(targets)).Msg("allocation replaced")
	return targets, nil
}
