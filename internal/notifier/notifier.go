package notifier

import (
	"context"
	"errors"

	"SignalScanner/internal/model"
)

// Notifier is told about every completed scan.
type Notifier interface {
	NotifyScan(ctx context.Context, snap *model.LatestSnapshot) error
}

// Multi fans a completed scan out to several notifiers. Every notifier is
// attempted; failures are joined.
type Multi []Notifier

func (m Multi) NotifyScan(ctx context.Context, snap *model.LatestSnapshot) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.NotifyScan(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
