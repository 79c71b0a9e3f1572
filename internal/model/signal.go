package model

import (
	"encoding/json"
	"fmt"
)

// Direction is the side of a signal.
type Direction string

const (
	Bullish Direction = "BULLISH"
	Bearish Direction = "BEARISH"
)

// SignalResult is the record emitted when an evaluator rule fires.
type SignalResult struct {
	Symbol    string
	Signal    Direction
	Timeframe string
	Values    map[string]float64 // price/indicator values that justified the signal
	Condition string
}

// MarshalJSON flattens Values next to the fixed fields.
func (r SignalResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Values)+4)
	for k, v := range r.Values {
		out[k] = v
	}
	out["symbol"] = r.Symbol
	out["signal"] = r.Signal
	out["timeframe"] = r.Timeframe
	out["condition"] = r.Condition
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON; every numeric key lands in Values.
func (r *SignalResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = SignalResult{Values: make(map[string]float64)}
	for k, v := range raw {
		var err error
		switch k {
		case "symbol":
			err = json.Unmarshal(v, &r.Symbol)
		case "signal":
			err = json.Unmarshal(v, &r.Signal)
		case "timeframe":
			err = json.Unmarshal(v, &r.Timeframe)
		case "condition":
			err = json.Unmarshal(v, &r.Condition)
		default:
			var f float64
			if json.Unmarshal(v, &f) == nil {
				r.Values[k] = f
			}
		}
		if err != nil {
			return fmt.Errorf("field %s: %w", k, err)
		}
	}
	return nil
}

// Outcome is either Signal(result) or NoSignal.
type Outcome struct {
	fired  bool
	result SignalResult
}

// Signal wraps a fired result.
func Signal(r SignalResult) Outcome { return Outcome{fired: true, result: r} }

// NoSignal is the empty outcome.
func NoSignal() Outcome { return Outcome{} }

func (o Outcome) Fired() bool { return o.fired }

// Result returns the record and whether the outcome fired.
func (o Outcome) Result() (SignalResult, bool) { return o.result, o.fired }

// Ptr returns the record or nil, for JSON payloads with nullable slots.
func (o Outcome) Ptr() *SignalResult {
	if !o.fired {
		return nil
	}
	r := o.result
	return &r
}
