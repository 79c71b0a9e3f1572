package collector

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"SignalScanner/internal/model"
)

// DefaultMaxRetries is the attempt cap used when HistoryFetcher.MaxRetries is unset.
const DefaultMaxRetries = 3

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep is the production SleepFunc.
func ContextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// HistoryFetcher wraps a Provider with bounded retry and exponential backoff.
type HistoryFetcher struct {
	Provider   Provider
	MaxRetries int
	Sleep      SleepFunc
}

// NewHistoryFetcher creates a HistoryFetcher with real sleeps.
func NewHistoryFetcher(p Provider, maxRetries int) *HistoryFetcher {
	return &HistoryFetcher{Provider: p, MaxRetries: maxRetries, Sleep: ContextSleep}
}

// Fetch returns the first non-empty series the provider yields. Empty responses
// and errors are retried after 1s, 2s, 4s ... Once attempts are exhausted it
// returns an empty series; it never reports an error to the caller.
func (h *HistoryFetcher) Fetch(ctx context.Context, symbol string, window model.Window, interval model.Interval) []model.OHLCV {
	attempts := h.MaxRetries
	if attempts <= 0 {
		attempts = DefaultMaxRetries
	}
	sleep := h.Sleep
	if sleep == nil {
		sleep = ContextSleep
	}
	log := logrus.WithFields(logrus.Fields{
		"symbol":   symbol,
		"window":   window,
		"interval": interval,
		"provider": h.Provider.Name(),
	})

	for attempt := 0; attempt < attempts; attempt++ {
		bars, err := h.Provider.FetchHistory(ctx, symbol, window, interval)
		if err == nil && len(bars) > 0 {
			return bars
		}
		if attempt == attempts-1 {
			log.WithError(err).Warnf("history fetch gave up after %d attempts", attempts)
			break
		}
		backoff := time.Duration(1<<uint(attempt)) * time.Second
		if err != nil {
			log.WithError(err).Debugf("history fetch failed (attempt %d/%d), retrying in %v", attempt+1, attempts, backoff)
		} else {
			log.Debugf("history fetch empty (attempt %d/%d), retrying in %v", attempt+1, attempts, backoff)
		}
		if err := sleep(ctx, backoff); err != nil {
			return nil
		}
	}
	return nil
}
