package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"SignalScanner/internal/model"
)

var _ Provider = (*AlpacaProvider)(nil)

// AlpacaProvider implements Provider using the Alpaca market-data API.
type AlpacaProvider struct {
	client *marketdata.Client
	feed   string
	now    func() time.Time
}

// NewAlpacaProvider creates a provider for the given credentials. An empty
// dataURL uses the client default; an empty feed uses "iex".
func NewAlpacaProvider(apiKey, apiSecret, dataURL, feed string) *AlpacaProvider {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	if feed == "" {
		feed = "iex"
	}
	return &AlpacaProvider{
		client: marketdata.NewClient(opts),
		feed:   feed,
		now:    time.Now,
	}
}

func (p *AlpacaProvider) Name() string { return "alpaca" }

func alpacaTimeFrame(interval model.Interval) (marketdata.TimeFrame, error) {
	switch interval {
	case model.Interval15m:
		return marketdata.NewTimeFrame(15, marketdata.Min), nil
	case model.Interval1h:
		return marketdata.NewTimeFrame(1, marketdata.Hour), nil
	case model.Interval1d:
		return marketdata.NewTimeFrame(1, marketdata.Day), nil
	case model.Interval1wk:
		return marketdata.NewTimeFrame(1, marketdata.Week), nil
	default:
		return marketdata.TimeFrame{}, fmt.Errorf("alpaca: unsupported interval %q", interval)
	}
}

func (p *AlpacaProvider) FetchHistory(ctx context.Context, symbol string, window model.Window, interval model.Interval) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tf, err := alpacaTimeFrame(interval)
	if err != nil {
		return nil, err
	}
	span := window.Duration()
	if span == 0 {
		return nil, fmt.Errorf("alpaca: unsupported window %q", window)
	}
	end := p.now()
	alpacaBars, err := p.client.GetBars(strings.ToUpper(symbol), marketdata.GetBarsRequest{
		TimeFrame: tf,
		Start:     end.Add(-span),
		End:       end,
		Feed:      marketdata.Feed(p.feed),
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca GetBars: %w", err)
	}

	bars := make([]model.OHLCV, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		bars = append(bars, model.OHLCV{
			Time:   ab.Timestamp,
			Open:   ab.Open,
			High:   ab.High,
			Low:    ab.Low,
			Close:  ab.Close,
			Volume: float64(ab.Volume),
		})
	}
	return bars, nil
}
