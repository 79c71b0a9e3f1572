package model

import (
	"encoding/json"
	"testing"
)

func TestSignalResultJSONIsFlat(t *testing.T) {
	r := SignalResult{
		Symbol:    "AAPL",
		Signal:    Bullish,
		Timeframe: "daily",
		Values:    map[string]float64{"price": 190.5, "ema10": 188.25},
		Condition: "Fresh crossover above EMA10 · EMAs stacked bullish",
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if flat["symbol"] != "AAPL" || flat["signal"] != "BULLISH" || flat["price"] != 190.5 || flat["ema10"] != 188.25 {
		t.Errorf("unexpected flat payload %s", data)
	}
	if _, nested := flat["values"]; nested {
		t.Error("values must not be nested")
	}

	var back SignalResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Symbol != r.Symbol || back.Condition != r.Condition || back.Values["ema10"] != 188.25 || len(back.Values) != 2 {
		t.Errorf("decoded %+v, want %+v", back, r)
	}
}

func TestOutcome(t *testing.T) {
	none := NoSignal()
	if none.Fired() || none.Ptr() != nil {
		t.Error("NoSignal must not fire")
	}

	fired := Signal(SignalResult{Symbol: "AAA"})
	r, ok := fired.Result()
	if !ok || r.Symbol != "AAA" || fired.Ptr().Symbol != "AAA" {
		t.Errorf("unexpected fired outcome %+v", r)
	}
}

func TestScanTypeAndStatus(t *testing.T) {
	for _, st := range ScanTypes {
		if !st.Valid() {
			t.Errorf("%s should be valid", st)
		}
	}
	if ScanType("ema_monthly").Valid() {
		t.Error("unknown scan type reported valid")
	}
	if JobQueued.Terminal() || JobRunning.Terminal() || !JobCompleted.Terminal() || !JobFailed.Terminal() {
		t.Error("unexpected terminal states")
	}
}
