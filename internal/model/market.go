package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Window is a look-back range in Yahoo's range vocabulary.
type Window string

const (
	Window5d  Window = "5d"
	Window1mo Window = "1mo"
	Window3mo Window = "3mo"
	Window6mo Window = "6mo"
	Window1y  Window = "1y"
	Window2y  Window = "2y"
)

// Duration approximates the calendar span of the window.
func (w Window) Duration() time.Duration {
	const day = 24 * time.Hour
	switch w {
	case Window5d:
		return 5 * day
	case Window1mo:
		return 31 * day
	case Window3mo:
		return 92 * day
	case Window6mo:
		return 183 * day
	case Window1y:
		return 366 * day
	case Window2y:
		return 731 * day
	default:
		return 0
	}
}

// Interval is the bar size of a price series.
type Interval string

const (
	Interval15m Interval = "15m"
	Interval1h  Interval = "1h"
	Interval1d  Interval = "1d"
	Interval1wk Interval = "1wk"
)
