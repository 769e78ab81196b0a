package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/carteira-app/carteira/internal/accounting"
	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/model"
	"github.com/carteira-app/carteira/internal/repository"
)

var errFetchPanic = errors.New("feed panicked")

// DefaultConcurrency bounds parallel feed requests when none is configured.
const DefaultConcurrency = 4

// snapshotLoader reads an owner's ledger and fetches per-ticker external data
// in parallel, so computations always run on an immutable snapshot.
type snapshotLoader struct {
	transactionRepo *repository.TransactionRepository
	concurrency     int
	now             func() time.Time
}

func newSnapshotLoader(transactionRepo *repository.TransactionRepository, concurrency int) snapshotLoader {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return snapshotLoader{
		transactionRepo: transactionRepo,
		concurrency:     concurrency,
		now:             time.Now,
	}
}

// today is the current calendar date.
func (l snapshotLoader) today() time.Time {
	return accounting.DateOf(l.now())
}

// ledger returns the owner's transactions traded up to today.
// Future-dated entries are left out of every computation.
func (l snapshotLoader) ledger(ctx context.Context, owner string) ([]model.Transaction, error) {
	txs, err := l.transactionRepo.GetTransactions(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveTransactions, err)
	}
	return accounting.UpTo(txs, l.today()), nil
}

// fetchEach calls fetch for every key with at most limit calls in flight.
// A failing key is reported in failed and does not affect the others; only
// cancellation of ctx or a panicking fetch aborts the whole fetch.
func fetchEach[V any](
	ctx context.Context,
	limit int,
	keys []string,
	fetch func(context.Context, string) (V, error),
) (values map[string]V, failed map[string]error, err error) {
	var mu sync.Mutex
	values = make(map[string]V, len(keys))
	failed = make(map[string]error)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, key := range keys {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: fetching %s: %v", errFetchPanic, key, r)
				}
			}()

			v, err := fetch(gctx, key)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failed[key] = err
				return nil
			}
			values[key] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return values, failed, nil
}

// recoverUnavailable turns a panic raised while computing op into
// apperrors.ErrDataUnavailable. It must be deferred by a function with a
// named error result.
func recoverUnavailable(log zerolog.Logger, op string, err *error) {
	if r := recover(); r != nil {
		log.Error().
			Str("op", op).
			Interface("panic", r).
			Str("stack", string(debug.Stack())).
			Msg("computation panicked")
		*err = apperrors.ErrDataUnavailable
	}
}

// unavailable logs the raw cause of a failure and hides it behind
// apperrors.ErrDataUnavailable.
func unavailable(log zerolog.Logger, op string, cause error) error {
	log.Error().Err(cause).Str("op", op).Msg("computation failed")
	return apperrors.ErrDataUnavailable
}

// aborted maps the error of an aborted fetch: cancellation is returned as
// is, anything else becomes apperrors.ErrDataUnavailable.
func aborted(log zerolog.Logger, op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return unavailable(log, op, err)
}
