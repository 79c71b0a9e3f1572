package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"SignalScanner/internal/model"
)

type fakeBot struct {
	fail int
	sent []tgbotapi.MessageConfig
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.fail > 0 {
		f.fail--
		return tgbotapi.Message{}, errors.New("bad gateway")
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeBot) StopReceivingUpdates() {}

type countingNotifier struct {
	calls int
	err   error
}

func (c *countingNotifier) NotifyScan(context.Context, *model.LatestSnapshot) error {
	c.calls++
	return c.err
}

func sampleSnapshot() *model.LatestSnapshot {
	return &model.LatestSnapshot{
		ScanType:     model.ScanEMADaily,
		Label:        "EMA Daily",
		CompletedAt:  time.Date(2025, 3, 1, 16, 30, 0, 0, time.UTC),
		TotalScanned: 500,
		ResultsCount: 2,
		Results: []model.SignalResult{
			{Symbol: "AAPL", Signal: model.Bullish, Values: map[string]float64{"price": 190.5, "ema10": 188.2}},
			{Symbol: "MSFT", Signal: model.Bearish, Values: map[string]float64{"price": 410}},
		},
	}
}

func TestFormatScanSummary(t *testing.T) {
	msg := FormatScanSummary(sampleSnapshot())

	for _, want := range []string{
		"<b>EMA Daily</b> | 2025-03-01 16:30",
		"Scanned: 500 | Signals: 2",
		"🟢 <b>AAPL</b> ema10=188.2 price=190.5",
		"🔴 <b>MSFT</b> price=410",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("summary missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatScanSummary_Empty(t *testing.T) {
	snap := sampleSnapshot()
	snap.Results, snap.ResultsCount = nil, 0
	if msg := FormatScanSummary(snap); !strings.Contains(msg, "No symbols met the conditions") {
		t.Errorf("unexpected empty summary:\n%s", msg)
	}
}

func TestFormatScanSummary_Truncates(t *testing.T) {
	snap := sampleSnapshot()
	snap.Results = make([]model.SignalResult, maxListed+5)
	for i := range snap.Results {
		snap.Results[i] = model.SignalResult{Symbol: "X", Signal: model.Bullish}
	}
	if msg := FormatScanSummary(snap); !strings.Contains(msg, "… and 5 more") {
		t.Errorf("expected truncation marker:\n%s", msg)
	}
}

func TestSendWithRetry(t *testing.T) {
	bot := &fakeBot{fail: 1}
	tn := &TelegramNotifier{bot: bot, chatID: 42}

	if err := tn.SendWithRetry(context.Background(), "hello", 1); err != nil {
		t.Fatalf("expected success after one retry, got %v", err)
	}
	if len(bot.sent) != 1 || bot.sent[0].ChatID != 42 || bot.sent[0].ParseMode != tgbotapi.ModeHTML {
		t.Errorf("unexpected sent messages %+v", bot.sent)
	}
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	tn := &TelegramNotifier{bot: &fakeBot{fail: 5}, chatID: 42}
	if err := tn.SendWithRetry(context.Background(), "hello", 0); err == nil {
		t.Error("expected error when every attempt fails")
	}
}

func TestMulti_AttemptsAll(t *testing.T) {
	a := &countingNotifier{err: errors.New("a down")}
	b := &countingNotifier{}
	c := &countingNotifier{err: errors.New("c down")}

	err := Multi{a, nil, b, c}.NotifyScan(context.Background(), sampleSnapshot())
	if err == nil || !strings.Contains(err.Error(), "a down") || !strings.Contains(err.Error(), "c down") {
		t.Errorf("expected joined errors, got %v", err)
	}
	if a.calls != 1 || b.calls != 1 || c.calls != 1 {
		t.Errorf("every notifier must be called once: %d %d %d", a.calls, b.calls, c.calls)
	}
	if err := (Multi{b}).NotifyScan(context.Background(), sampleSnapshot()); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestChannel(t *testing.T) {
	if got := Channel(model.ScanSMA50); got != "signals:scan:sma50" {
		t.Errorf("unexpected channel %q", got)
	}
}
