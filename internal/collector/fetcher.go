package collector

import (
	"context"

	"SignalScanner/internal/model"
)

// Provider fetches a chronological price series from a market-data source.
// An empty series with a nil error is a valid (transient) response.
type Provider interface {
	FetchHistory(ctx context.Context, symbol string, window model.Window, interval model.Interval) ([]model.OHLCV, error)
	Name() string
}
