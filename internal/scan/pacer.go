package scan

import (
	"context"
	"time"
)

// Pacer throttles the worker between symbols.
type Pacer interface {
	Wait(ctx context.Context) error
}

// PacerFunc builds the pacer for a scan with the given configured delay.
type PacerFunc func(delay time.Duration) Pacer

// FixedDelay sleeps a constant duration.
type FixedDelay time.Duration

func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(d))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoDelay never waits.
type NoDelay struct{}

func (NoDelay) Wait(ctx context.Context) error { return ctx.Err() }

// FixedPacing is the production PacerFunc.
func FixedPacing(delay time.Duration) Pacer { return FixedDelay(delay) }
