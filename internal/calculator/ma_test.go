package calculator

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateEMA_Insufficient(t *testing.T) {
	if _, err := CalculateEMA([]float64{1, 2, 3}, 10); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if _, err := CalculateEMA(nil, 1); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for empty input, got %v", err)
	}
}

func TestCalculateEMA_Values(t *testing.T) {
	prices := []float64{10, 11, 12, 13}
	ema, err := CalculateEMA(prices, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// alpha = 0.5, seeded at the first value
	want := []float64{10, 10.5, 11.25, 12.125}
	for i := range want {
		if math.Abs(ema[i]-want[i]) > 1e-12 {
			t.Errorf("ema[%d] = %v, want %v", i, ema[i], want[i])
		}
	}
}

func TestCalculateEMA_Causal(t *testing.T) {
	base := []float64{5, 6, 7, 8, 9, 10}
	a, _ := CalculateEMA(base, 3)
	extended := append(append([]float64{}, base...), 100, 200)
	b, _ := CalculateEMA(extended, 3)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("value at %d changed after appending future bars: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestCalculateSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}
	sma, err := CalculateSMA(prices, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(sma[0]) || !math.IsNaN(sma[1]) {
		t.Errorf("expected warm-up NaN, got %v %v", sma[0], sma[1])
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if sma[i+2] != w {
			t.Errorf("sma[%d] = %v, want %v", i+2, sma[i+2], w)
		}
	}
	if _, err := CalculateSMA(prices, 6); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestIndicatorsDeterministic(t *testing.T) {
	prices := make([]float64, 120)
	for i := range prices {
		prices[i] = 100 + math.Sin(float64(i)/7)*5
	}
	e1, _ := CalculateEMA(prices, 20)
	e2, _ := CalculateEMA(prices, 20)
	s1, _ := CalculateSMA(prices, 50)
	s2, _ := CalculateSMA(prices, 50)
	for i := range prices {
		if e1[i] != e2[i] {
			t.Fatalf("ema not deterministic at %d", i)
		}
		if !(s1[i] == s2[i] || (math.IsNaN(s1[i]) && math.IsNaN(s2[i]))) {
			t.Fatalf("sma not deterministic at %d", i)
		}
	}
}

func TestDefined(t *testing.T) {
	a := []float64{1, math.NaN(), 3}
	b := []float64{1, 2, 3}
	if !Defined(0, a, b) || Defined(1, a, b) || !Defined(2, a, b) || Defined(3, a, b) {
		t.Error("unexpected Defined results")
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in     float64
		places int
		want   float64
	}{
		{2.675, 2, 2.67}, // binary value is just below 2.675
		{1.005, 2, 1},
		{10.126, 2, 10.13},
		{66.66666, 1, 66.7},
		{-3.14159, 2, -3.14},
	}
	for _, tt := range tests {
		if got := Round(tt.in, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.in, tt.places, got, tt.want)
		}
	}
}
