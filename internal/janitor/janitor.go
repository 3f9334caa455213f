// Package janitor runs periodic housekeeping on a cron schedule.
package janitor

import (
	"context"
	"time"

	"github.com/habitlog/internal/metrics"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	// TokenPruneSpec removes expired access tokens.
	TokenPruneSpec = "@hourly"
	// LimiterCleanupSpec drops idle rate-limiter buckets.
	LimiterCleanupSpec = "@every 10m"
	limiterMaxIdle     = 30 * time.Minute
)

// TokenPruner deletes expired access tokens.
type TokenPruner interface {
	PruneExpired(ctx context.Context) (int64, error)
}

// LimiterCleaner forgets idle clients.
type LimiterCleaner interface {
	Cleanup(maxIdle time.Duration) int
}

// Janitor owns the cron scheduler and its jobs.
type Janitor struct {
	cron    *cron.Cron
	tokens  TokenPruner
	limiter LimiterCleaner
	log     logrus.FieldLogger
}

// New registers the housekeeping jobs. limiter may be nil.
func New(tokens TokenPruner, limiter LimiterCleaner, log logrus.FieldLogger) (*Janitor, error) {
	j := &Janitor{
		cron:    cron.New(),
		tokens:  tokens,
		limiter: limiter,
		log:     log,
	}

	if _, err := j.cron.AddFunc(TokenPruneSpec, j.PruneTokens); err != nil {
		return nil, err
	}
	if limiter != nil {
		if _, err := j.cron.AddFunc(LimiterCleanupSpec, j.CleanupLimiter); err != nil {
			return nil, err
		}
	}
	return j, nil
}

// Start runs the scheduler in the background.
func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts the scheduler and waits for running jobs until ctx ends.
func (j *Janitor) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Jobs returns how many jobs are scheduled.
func (j *Janitor) Jobs() int {
	return len(j.cron.Entries())
}

// PruneTokens deletes expired access tokens once.
func (j *Janitor) PruneTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := j.tokens.PruneExpired(ctx)
	if err != nil {
		j.log.WithError(err).Error("prune access tokens failed")
		return
	}
	metrics.RecordTokensPruned(removed)
	if removed > 0 {
		j.log.WithField("removed", removed).Info("pruned expired access tokens")
	}
}

// CleanupLimiter drops idle rate-limiter entries once.
func (j *Janitor) CleanupLimiter() {
	if removed := j.limiter.Cleanup(limiterMaxIdle); removed > 0 {
		j.log.WithField("removed", removed).Debug("dropped idle rate limiter entries")
	}
}
