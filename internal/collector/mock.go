package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SignalScanner/internal/model"
)

// MockResponse is one scripted reply from MockProvider.
type MockResponse struct {
	Bars []model.OHLCV
	Err  error
}

// MockProvider returns controllable fixed data for development and testing.
// Responses are keyed by symbol and interval; each call consumes the next
// scripted response and the last one repeats.
type MockProvider struct {
	mu        sync.Mutex
	responses map[string][]MockResponse
	calls     map[string]int
	// Price seeds generated bars for unscripted keys when non-zero.
	Price float64
}

// NewMockProvider creates an empty MockProvider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		responses: make(map[string][]MockResponse),
		calls:     make(map[string]int),
	}
}

func (m *MockProvider) Name() string { return "mock" }

func mockKey(symbol string, interval model.Interval) string {
	return symbol + "|" + string(interval)
}

// Script sets the sequence of responses for symbol at interval.
func (m *MockProvider) Script(symbol string, interval model.Interval, rs ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[mockKey(symbol, interval)] = rs
}

// SetBars scripts a single successful response.
func (m *MockProvider) SetBars(symbol string, interval model.Interval, bars []model.OHLCV) {
	m.Script(symbol, interval, MockResponse{Bars: bars})
}

// Calls returns how many times symbol/interval has been fetched.
func (m *MockProvider) Calls(symbol string, interval model.Interval) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[mockKey(symbol, interval)]
}

func (m *MockProvider) FetchHistory(ctx context.Context, symbol string, _ model.Window, interval model.Interval) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := mockKey(symbol, interval)
	n := m.calls[key]
	m.calls[key] = n + 1

	rs, ok := m.responses[key]
	if !ok || len(rs) == 0 {
		if m.Price > 0 {
			return generateMockBars(m.Price, 300), nil
		}
		return nil, fmt.Errorf("mock: no data for %s", key)
	}
	if n >= len(rs) {
		n = len(rs) - 1
	}
	return rs[n].Bars, rs[n].Err
}

// BarsFromCloses builds a daily series with the given closes.
func BarsFromCloses(closes []float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000000,
		}
	}
	return bars
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
