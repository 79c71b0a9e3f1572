package strategy

import (
	"context"
	"fmt"

	"SignalScanner/internal/calculator"
	"SignalScanner/internal/model"
)

const (
	smaPeriod  = 50
	minSMABars = 51
)

type smaTimeframe struct {
	Key      string // prefix for result values
	Window   model.Window
	Interval model.Interval
}

var smaTimeframes = []smaTimeframe{
	{Key: "daily", Window: model.Window3mo, Interval: model.Interval1d},
	{Key: "hourly", Window: model.Window1mo, Interval: model.Interval1h},
	{Key: "min15", Window: model.Window5d, Interval: model.Interval15m},
}

type smaPosition struct {
	Above bool
	Price float64
	SMA   float64
}

// SMAAlignment fires when price sits above SMA50 on the daily, hourly and
// 15-minute charts at once.
type SMAAlignment struct {
	History HistorySource
	// AllowBearish also reports all-below alignment. The scan engine leaves it off.
	AllowBearish bool
}

func NewSMAAlignment(h HistorySource) *SMAAlignment {
	return &SMAAlignment{History: h}
}

func (s *SMAAlignment) Name() string { return "sma50_alignment" }

func (s *SMAAlignment) position(ctx context.Context, symbol string, tf smaTimeframe) (smaPosition, error) {
	bars := s.History.Fetch(ctx, symbol, tf.Window, tf.Interval)
	if len(bars) == 0 {
		return smaPosition{}, fmt.Errorf("%s: %w", tf.Interval, ErrFetchFault)
	}
	if len(bars) < minSMABars {
		return smaPosition{}, fmt.Errorf("%s: %w: %d bars, need %d", tf.Interval, ErrInsufficientHistory, len(bars), minSMABars)
	}
	closes := calculator.ExtractCloses(bars)
	sma, err := calculator.CalculateSMA(closes, smaPeriod)
	if err != nil {
		return smaPosition{}, fmt.Errorf("%s: %w: %v", tf.Interval, ErrInsufficientHistory, err)
	}
	last := -1
	for i := len(closes) - 1; i >= 0; i-- {
		if calculator.Defined(i, closes, sma) {
			last = i
			break
		}
	}
	if last < 0 {
		return smaPosition{}, fmt.Errorf("%s: %w: no rows past warm-up", tf.Interval, ErrInsufficientHistory)
	}
	price := calculator.Round(closes[last], 2)
	avg := calculator.Round(sma[last], 2)
	return smaPosition{Above: price > avg, Price: price, SMA: avg}, nil
}

func (s *SMAAlignment) Evaluate(ctx context.Context, symbol string) (model.Outcome, error) {
	positions := make([]smaPosition, len(smaTimeframes))
	for i, tf := range smaTimeframes {
		p, err := s.position(ctx, symbol, tf)
		if err != nil {
			// a partial result is not a result
			return model.NoSignal(), err
		}
		positions[i] = p
	}

	allAbove, allBelow := true, true
	values := make(map[string]float64, 2*len(positions))
	for i, p := range positions {
		allAbove = allAbove && p.Above
		allBelow = allBelow && !p.Above
		values[smaTimeframes[i].Key+"_price"] = p.Price
		values[smaTimeframes[i].Key+"_sma50"] = p.SMA
	}

	switch {
	case allAbove:
		return model.Signal(model.SignalResult{
			Symbol:    symbol,
			Signal:    model.Bullish,
			Timeframe: "daily+1h+15m",
			Values:    values,
			Condition: "Price above SMA50 on Daily + 1HR + 15min",
		}), nil
	case allBelow && s.AllowBearish:
		return model.Signal(model.SignalResult{
			Symbol:    symbol,
			Signal:    model.Bearish,
			Timeframe: "daily+1h+15m",
			Values:    values,
			Condition: "Price below SMA50 on Daily + 1HR + 15min",
		}), nil
	default:
		return model.NoSignal(), nil
	}
}
