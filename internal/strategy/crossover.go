package strategy

import (
	"context"
	"fmt"

	"SignalScanner/internal/calculator"
	"SignalScanner/internal/model"
)

const (
	minCrossoverBars = 41
	crossoverText    = "Fresh crossover above EMA10 · EMAs stacked bullish"
)

// EMACrossover detects a fresh close above EMA10 while EMA10 > EMA20 > EMA40.
type EMACrossover struct {
	History   HistorySource
	Window    model.Window
	Interval  model.Interval
	Timeframe string
}

// NewEMADaily evaluates six months of daily bars.
func NewEMADaily(h HistorySource) *EMACrossover {
	return &EMACrossover{History: h, Window: model.Window6mo, Interval: model.Interval1d, Timeframe: "daily"}
}

// NewEMAWeekly evaluates two years of weekly bars.
func NewEMAWeekly(h HistorySource) *EMACrossover {
	return &EMACrossover{History: h, Window: model.Window2y, Interval: model.Interval1wk, Timeframe: "weekly"}
}

func (e *EMACrossover) Name() string { return "ema_crossover_" + e.Timeframe }

// crossoverInput holds the latest bar rounded to cents and the prior bar raw.
type crossoverInput struct {
	Price, EMA10, EMA20, EMA40 float64
	PrevClose, PrevEMA10       float64
}

// conditions returns the six gates in order:
// close above each EMA, previous close below previous EMA10, EMA20 > EMA40, EMA10 > EMA20.
func (in crossoverInput) conditions() [6]bool {
	return [6]bool{
		in.Price > in.EMA10,
		in.Price > in.EMA20,
		in.Price > in.EMA40,
		in.PrevClose < in.PrevEMA10,
		in.EMA20 > in.EMA40,
		in.EMA10 > in.EMA20,
	}
}

// newCrossoverInput rounds the latest row to cents. The rounding is part of
// the rule: it can flip a borderline comparison.
func newCrossoverInput(closes, ema10, ema20, ema40 []float64, last, prev int) crossoverInput {
	return crossoverInput{
		Price:     calculator.Round(closes[last], 2),
		EMA10:     calculator.Round(ema10[last], 2),
		EMA20:     calculator.Round(ema20[last], 2),
		EMA40:     calculator.Round(ema40[last], 2),
		PrevClose: closes[prev],
		PrevEMA10: ema10[prev],
	}
}

func (in crossoverInput) fires() bool {
	for _, ok := range in.conditions() {
		if !ok {
			return false
		}
	}
	return true
}

func (e *EMACrossover) Evaluate(ctx context.Context, symbol string) (model.Outcome, error) {
	bars := e.History.Fetch(ctx, symbol, e.Window, e.Interval)
	if len(bars) == 0 {
		return model.NoSignal(), ErrFetchFault
	}
	if len(bars) < minCrossoverBars {
		return model.NoSignal(), fmt.Errorf("%w: %d bars, need %d", ErrInsufficientHistory, len(bars), minCrossoverBars)
	}

	closes := calculator.ExtractCloses(bars)
	ema10, err := calculator.CalculateEMA(closes, 10)
	if err != nil {
		return model.NoSignal(), fmt.Errorf("%w: ema10: %v", ErrInsufficientHistory, err)
	}
	ema20, err := calculator.CalculateEMA(closes, 20)
	if err != nil {
		return model.NoSignal(), fmt.Errorf("%w: ema20: %v", ErrInsufficientHistory, err)
	}
	ema40, err := calculator.CalculateEMA(closes, 40)
	if err != nil {
		return model.NoSignal(), fmt.Errorf("%w: ema40: %v", ErrInsufficientHistory, err)
	}

	valid := make([]int, 0, len(closes))
	for i := range closes {
		if calculator.Defined(i, closes, ema10, ema20, ema40) {
			valid = append(valid, i)
		}
	}
	if len(valid) < 2 {
		return model.NoSignal(), fmt.Errorf("%w: %d valid rows", ErrInsufficientHistory, len(valid))
	}
	last, prev := valid[len(valid)-1], valid[len(valid)-2]

	in := newCrossoverInput(closes, ema10, ema20, ema40, last, prev)
	if !in.fires() {
		return model.NoSignal(), nil
	}
	return model.Signal(model.SignalResult{
		Symbol:    symbol,
		Signal:    model.Bullish,
		Timeframe: e.Timeframe,
		Values: map[string]float64{
			"price": in.Price,
			"ema10": in.EMA10,
			"ema20": in.EMA20,
			"ema40": in.EMA40,
		},
		Condition: crossoverText,
	}), nil
}
