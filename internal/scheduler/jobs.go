package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// AlertChecker checks the active price alerts of every owner.
type AlertChecker interface {
	CheckAll(ctx context.Context) (int, error)
}

// AlertSweepJob triggers the price alerts whose target was reached.
// A sweep still running when the next one is due makes the next one a no-op.
type AlertSweepJob struct {
	checker AlertChecker
	timeout time.Duration
	running sync.Mutex
	log     zerolog.Logger
}

// NewAlertSweepJob creates an AlertSweepJob. Each sweep is bounded by timeout.
func NewAlertSweepJob(checker AlertChecker, timeout time.Duration, log zerolog.Logger) *AlertSweepJob {
	return &AlertSweepJob{
		checker: checker,
		timeout: timeout,
		log:     log.With().Str("job", "alert_sweep").Logger(),
	}
}

// Name returns the job name
func (j *AlertSweepJob) Name() string {
	return "alert_sweep"
}

// Run executes one sweep.
func (j *AlertSweepJob) Run() error {
	if !j.running.TryLock() {
		j.log.Warn().Msg("Previous alert sweep still running")
		return nil
	}
	defer j.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	triggered, err := j.checker.CheckAll(ctx)
	if err != nil {
		return err
	}

	j.log.Info().
		Int("triggered", triggered).
		Dur("took", time.Since(start)).
		Msg("Alert sweep completed")
	return nil
}

// Purger drops expired cache entries.
type Purger interface {
	PurgeExpired() int
}

// CachePurgeJob releases the memory of expired market data entries.
type CachePurgeJob struct {
	purger Purger
	log    zerolog.Logger
}

// NewCachePurgeJob creates a CachePurgeJob.
func NewCachePurgeJob(purger Purger, log zerolog.Logger) *CachePurgeJob {
	return &CachePurgeJob{
		purger: purger,
		log:    log.With().Str("job", "cache_purge").Logger(),
	}
}

// Name returns the job name
func (j *CachePurgeJob) Name() string {
	return "cache_purge"
}

// Run executes the purge.
func (j *CachePurgeJob) Run() error {
	removed := j.purger.PurgeExpired()
	j.log.Debug().Int("removed", removed).Msg("Cache purged")
	return nil
}
