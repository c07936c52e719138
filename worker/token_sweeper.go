package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"uptask/store"
)

// TokenSweeper periodically drops expired confirmation codes.
type TokenSweeper struct {
	Tokens   store.TokenStore
	Interval time.Duration
	Logger   *logrus.Entry
}

func NewTokenSweeper(tokens store.TokenStore, interval time.Duration, logger *logrus.Entry) *TokenSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &TokenSweeper{
		Tokens:   tokens,
		Interval: interval,
		Logger:   logger,
	}
}

// Start blocks until ctx is cancelled.
func (ts *TokenSweeper) Start(ctx context.Context) {
	ts.Logger.Info("Token sweeper started")

	ticker := time.NewTicker(ts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ts.Logger.Info("Token sweeper shutting down...")
			return
		case <-ticker.C:
			ts.Sweep(ctx)
		}
	}
}

// Sweep runs a single purge pass and returns the number of removed codes.
func (ts *TokenSweeper) Sweep(ctx context.Context) int64 {
	removed, err := ts.Tokens.PurgeExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			ts.Logger.WithError(err).Error("Error purging expired confirmation tokens")
		}
		return 0
	}
	if removed > 0 {
		ts.Logger.WithField("removed", removed).Debug("purged expired confirmation tokens")
	}
	return removed
}
