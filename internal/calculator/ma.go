package calculator

import (
	"errors"
	"math"
	"strconv"

	"SignalScanner/internal/model"
)

// ErrInsufficientData is returned when a series is shorter than the averaging period.
var ErrInsufficientData = errors.New("not enough data for moving average")

// CalculateEMA returns the exponential moving average series aligned to prices.
// Smoothing factor is 2/(period+1), seeded at the first value.
func CalculateEMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(prices) < period {
		return nil, ErrInsufficientData
	}
	alpha := 2.0 / float64(period+1)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = alpha*prices[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// CalculateSMA returns the trailing simple moving average series aligned to prices.
// The first period-1 entries are NaN (warm-up).
func CalculateSMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(prices) < period {
		return nil, ErrInsufficientData
	}
	out := make([]float64, len(prices))
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(period)
	}
	return out, nil
}

// Defined reports whether every series has a usable value at index i.
func Defined(i int, series ...[]float64) bool {
	for _, s := range series {
		if i >= len(s) || math.IsNaN(s[i]) || math.IsInf(s[i], 0) {
			return false
		}
	}
	return true
}

// Round rounds x to the given number of decimal places using the exact binary
// value of x, so 2.675 rounds to 2.67.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return v
}

// ExtractCloses returns the close prices of bars in order.
func ExtractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
