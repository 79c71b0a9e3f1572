package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"SignalScanner/internal/collector"
	"SignalScanner/internal/model"
)

// stubHistory serves fixed series keyed by symbol and interval.
type stubHistory map[string][]model.OHLCV

func (s stubHistory) set(symbol string, interval model.Interval, closes []float64) {
	s[symbol+"|"+string(interval)] = collector.BarsFromCloses(closes)
}

func (s stubHistory) Fetch(_ context.Context, symbol string, _ model.Window, interval model.Interval) []model.OHLCV {
	return s[symbol+"|"+string(interval)]
}

// crossoverCloses is a steady uptrend, one dip below EMA10, then a breakout.
func crossoverCloses(prevClose, lastClose float64) []float64 {
	closes := make([]float64, 0, 62)
	for i := 0; i < 60; i++ {
		closes = append(closes, 100+float64(i))
	}
	return append(closes, prevClose, lastClose)
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestEMACrossover_Fires(t *testing.T) {
	h := stubHistory{}
	h.set("AAA", model.Interval1d, crossoverCloses(150, 165))
	out, err := NewEMADaily(h).Evaluate(context.Background(), "AAA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, ok := out.Result()
	if !ok {
		t.Fatal("expected crossover signal")
	}
	if res.Signal != model.Bullish || res.Timeframe != "daily" || res.Values["price"] != 165 {
		t.Errorf("unexpected result: %+v", res)
	}
	if !(res.Values["ema10"] > res.Values["ema20"] && res.Values["ema20"] > res.Values["ema40"]) {
		t.Errorf("expected stacked EMAs, got %+v", res.Values)
	}
}

func TestEMACrossover_NoFreshBreak(t *testing.T) {
	h := stubHistory{}
	// previous close stays above EMA10, so there is no crossover
	h.set("AAA", model.Interval1wk, crossoverCloses(160, 165))
	out, err := NewEMAWeekly(h).Evaluate(context.Background(), "AAA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Fired() {
		t.Error("expected no signal without a fresh break")
	}
}

func TestEMACrossover_InsufficientHistory(t *testing.T) {
	h := stubHistory{}
	h.set("AAA", model.Interval1d, ramp(40, 10, 1))
	if _, err := NewEMADaily(h).Evaluate(context.Background(), "AAA"); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory, got %v", err)
	}
	if _, err := NewEMADaily(h).Evaluate(context.Background(), "MISSING"); !errors.Is(err, ErrFetchFault) {
		t.Errorf("expected ErrFetchFault, got %v", err)
	}
}

func TestCrossoverConditions_EachGateSuppresses(t *testing.T) {
	base := crossoverInput{Price: 110, EMA10: 105, EMA20: 100, EMA40: 95, PrevClose: 99, PrevEMA10: 100}
	if !base.fires() {
		t.Fatal("base input should fire")
	}
	tests := []struct {
		name string
		gate int
		mod  func(*crossoverInput)
	}{
		{"close at EMA10", 0, func(in *crossoverInput) { in.Price = 105 }},
		{"close at EMA20", 1, func(in *crossoverInput) { in.Price = 100 }},
		{"close at EMA40", 2, func(in *crossoverInput) { in.Price = 95 }},
		{"prev close at prev EMA10", 3, func(in *crossoverInput) { in.PrevClose = 100 }},
		{"EMA20 at EMA40", 4, func(in *crossoverInput) { in.EMA40 = 100 }},
		{"EMA10 at EMA20", 5, func(in *crossoverInput) { in.EMA20 = 105 }},
	}
	for _, tt := range tests {
		in := base
		tt.mod(&in)
		if in.conditions()[tt.gate] {
			t.Errorf("%s: gate %d should be false", tt.name, tt.gate)
		}
		if in.fires() {
			t.Errorf("%s: expected no signal", tt.name)
		}
	}
}

func TestCrossoverInput_RoundingFlipsBorderline(t *testing.T) {
	closes := []float64{99, 105.004}
	ema10 := []float64{100, 104.996}
	ema20 := []float64{90, 100}
	ema40 := []float64{80, 95}
	in := newCrossoverInput(closes, ema10, ema20, ema40, 1, 0)
	// raw close is above EMA10, but both round to 105.00
	if in.Price != 105 || in.EMA10 != 105 {
		t.Fatalf("unexpected rounding: %+v", in)
	}
	if in.fires() {
		t.Error("expected rounding to suppress the borderline crossover")
	}
	if in.PrevClose != 99 || in.PrevEMA10 != 100 {
		t.Errorf("previous row must stay raw: %+v", in)
	}
}

func setAllSMA(h stubHistory, symbol string, closes []float64) {
	h.set(symbol, model.Interval1d, closes)
	h.set(symbol, model.Interval1h, closes)
	h.set(symbol, model.Interval15m, closes)
}

func TestSMAAlignment_AllAbove(t *testing.T) {
	h := stubHistory{}
	setAllSMA(h, "AAA", ramp(60, 100, 1))
	out, err := NewSMAAlignment(h).Evaluate(context.Background(), "AAA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, ok := out.Result()
	if !ok {
		t.Fatal("expected bullish alignment")
	}
	if res.Timeframe != "daily+1h+15m" || res.Values["daily_price"] != 159 || res.Values["min15_sma50"] == 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestSMAAlignment_MissingTimeframeSuppresses(t *testing.T) {
	h := stubHistory{}
	h.set("AAA", model.Interval1d, ramp(60, 100, 1))
	h.set("AAA", model.Interval1h, ramp(60, 100, 1))
	// 15m has too few bars
	h.set("AAA", model.Interval15m, ramp(50, 100, 1))
	out, err := NewSMAAlignment(h).Evaluate(context.Background(), "AAA")
	if out.Fired() {
		t.Fatal("expected no signal when one timeframe is undefined")
	}
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory, got %v", err)
	}

	delete(h, "AAA|15m")
	if out, err := NewSMAAlignment(h).Evaluate(context.Background(), "AAA"); out.Fired() || !errors.Is(err, ErrFetchFault) {
		t.Errorf("expected fetch fault without signal, got %v %v", out.Fired(), err)
	}
}

func TestSMAAlignment_BearishOnlyWhenAllowed(t *testing.T) {
	h := stubHistory{}
	setAllSMA(h, "ZZZ", ramp(60, 200, -1))

	out, err := NewSMAAlignment(h).Evaluate(context.Background(), "ZZZ")
	if err != nil || out.Fired() {
		t.Fatalf("scan variant must ignore bearish alignment, got fired=%v err=%v", out.Fired(), err)
	}

	ev := &SMAAlignment{History: h, AllowBearish: true}
	out, err = ev.Evaluate(context.Background(), "ZZZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, ok := out.Result()
	if !ok || res.Signal != model.Bearish {
		t.Errorf("expected bearish signal, got %+v", res)
	}
}

func TestSMAAlignment_MixedNoSignal(t *testing.T) {
	h := stubHistory{}
	h.set("MIX", model.Interval1d, ramp(60, 100, 1))
	h.set("MIX", model.Interval1h, ramp(60, 200, -1))
	h.set("MIX", model.Interval15m, ramp(60, 100, 1))
	ev := &SMAAlignment{History: h, AllowBearish: true}
	if out, _ := ev.Evaluate(context.Background(), "MIX"); out.Fired() {
		t.Error("expected no signal for mixed alignment")
	}
}

type panicEvaluator struct{}

func (panicEvaluator) Name() string { return "panic" }
func (panicEvaluator) Evaluate(context.Context, string) (model.Outcome, error) {
	var m map[string]int
	m["boom"]++
	return model.NoSignal(), nil
}

type errEvaluator struct{ err error }

func (errEvaluator) Name() string { return "err" }
func (e errEvaluator) Evaluate(context.Context, string) (model.Outcome, error) {
	return model.Signal(model.SignalResult{Symbol: "X"}), e.err
}

func TestSafe_SwallowsFaults(t *testing.T) {
	ctx := context.Background()
	if Safe(ctx, panicEvaluator{}, "AAA").Fired() {
		t.Error("panic should yield no signal")
	}
	if Safe(ctx, errEvaluator{err: errors.New("unexpected")}, "AAA").Fired() {
		t.Error("error should yield no signal")
	}
	if !Safe(ctx, errEvaluator{}, "AAA").Fired() {
		t.Error("nil error should keep the outcome")
	}
}

func TestRegistry_AnalyzeSymbol(t *testing.T) {
	h := stubHistory{}
	h.set("AAA", model.Interval1d, crossoverCloses(150, 165))
	r := NewRegistry(h)

	got, err := r.AnalyzeSymbol(context.Background(), "AAA")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(got))
	}
	if got[model.ScanEMADaily] == nil {
		t.Error("expected daily crossover")
	}
	if got[model.ScanEMAWeekly] != nil || got[model.ScanSMA50] != nil {
		t.Errorf("expected nil weekly and sma50, got %+v %+v", got[model.ScanEMAWeekly], got[model.ScanSMA50])
	}
	if r.Label(model.ScanSMA50) != "SMA50 Multi-TF" {
		t.Errorf("unexpected label %q", r.Label(model.ScanSMA50))
	}
	if c, _ := r.Get(model.ScanSMA50); c.Delay <= 0 {
		t.Error("expected a pacing delay")
	}
}

func TestRegistry_AnalyzeSymbolCancelled(t *testing.T) {
	h := stubHistory{}
	h.set("AAA", model.Interval1d, crossoverCloses(150, 165))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := NewRegistry(h).AnalyzeSymbol(ctx, "AAA")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no partial map, got %+v", got)
	}
}

func TestNewRegistry_PacingDelays(t *testing.T) {
	r := NewRegistry(stubHistory{})
	tests := []struct {
		scanType model.ScanType
		label    string
		delay    time.Duration
	}{
		{model.ScanEMADaily, "EMA Daily", 500 * time.Millisecond},
		{model.ScanEMAWeekly, "EMA Weekly", 500 * time.Millisecond},
		{model.ScanSMA50, "SMA50 Multi-TF", time.Second},
	}
	for _, tc := range tests {
		c, ok := r.Get(tc.scanType)
		if !ok {
			t.Fatalf("%s not registered", tc.scanType)
		}
		if c.Label != tc.label || c.Delay != tc.delay {
			t.Errorf("%s: got label %q delay %v, want %q %v", tc.scanType, c.Label, c.Delay, tc.label, tc.delay)
		}
	}
}
