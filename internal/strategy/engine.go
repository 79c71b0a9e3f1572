package strategy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"SignalScanner/internal/model"
)

// Evaluation errors. Both mean "no signal" for the symbol, never a scan failure.
var (
	ErrFetchFault          = errors.New("no price data after retries")
	ErrInsufficientHistory = errors.New("insufficient history")
)

// HistorySource returns a price series, empty when the provider gave nothing.
type HistorySource interface {
	Fetch(ctx context.Context, symbol string, window model.Window, interval model.Interval) []model.OHLCV
}

// Evaluator applies one fixed signal rule to a symbol.
type Evaluator interface {
	Name() string
	Evaluate(ctx context.Context, symbol string) (model.Outcome, error)
}

// Safe runs ev and converts every error or panic into NoSignal so that one
// symbol can never abort a scan.
func Safe(ctx context.Context, ev Evaluator, symbol string) (out model.Outcome) {
	log := logrus.WithFields(logrus.Fields{"evaluator": ev.Name(), "symbol": symbol})
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("evaluator panic: %v", r)
			out = model.NoSignal()
		}
	}()

	o, err := ev.Evaluate(ctx, symbol)
	if err != nil {
		if errors.Is(err, ErrFetchFault) || errors.Is(err, ErrInsufficientHistory) {
			log.Debugf("no signal: %v", err)
		} else {
			log.WithError(err).Warn("evaluator failed")
		}
		return model.NoSignal()
	}
	return o
}

// ScanConfig binds a scan type to its rule and pacing.
type ScanConfig struct {
	Type      model.ScanType
	Label     string
	Evaluator Evaluator
	Delay     time.Duration // pause after every symbol to stay under upstream rate limits
}

// Registry maps scan types to their configuration.
type Registry struct {
	configs map[model.ScanType]ScanConfig
}

// NewRegistry builds the three standard scans on top of h.
func NewRegistry(h HistorySource) *Registry {
	return NewRegistryWith(
		ScanConfig{Type: model.ScanEMADaily, Label: "EMA Daily", Evaluator: NewEMADaily(h), Delay: 500 * time.Millisecond},
		ScanConfig{Type: model.ScanEMAWeekly, Label: "EMA Weekly", Evaluator: NewEMAWeekly(h), Delay: 500 * time.Millisecond},
		ScanConfig{Type: model.ScanSMA50, Label: "SMA50 Multi-TF", Evaluator: NewSMAAlignment(h), Delay: time.Second},
	)
}

// NewRegistryWith builds a registry from explicit configs.
func NewRegistryWith(configs ...ScanConfig) *Registry {
	r := &Registry{configs: make(map[model.ScanType]ScanConfig, len(configs))}
	for _, c := range configs {
		r.configs[c.Type] = c
	}
	return r
}

// Get returns the config for t.
func (r *Registry) Get(t model.ScanType) (ScanConfig, bool) {
	c, ok := r.configs[t]
	return c, ok
}

// Label returns the display label for t, or "" when unknown.
func (r *Registry) Label(t model.ScanType) string {
	return r.configs[t].Label
}

// AnalyzeSymbol runs every registered evaluator against one symbol. Each slot
// is nil when that rule did not fire. It fails only when ctx is cancelled
// before every evaluator has reported.
func (r *Registry) AnalyzeSymbol(ctx context.Context, symbol string) (map[model.ScanType]*model.SignalResult, error) {
	var (
		mu  sync.Mutex
		out = make(map[model.ScanType]*model.SignalResult, len(r.configs))
	)
	g, gctx := errgroup.WithContext(ctx)
	for t, c := range r.configs {
		t, c := t, c
		g.Go(func() error {
			res := Safe(gctx, c.Evaluator, symbol).Ptr()
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("analyze %s %s: %w", symbol, t, err)
			}
			mu.Lock()
			out[t] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
