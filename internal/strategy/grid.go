package strategy

import (
	"fmt"
	"sort"

	"github.com/stratlab/stratrun/internal/domain"
)

// ParamGrid maps parameter names to the candidate values a sweep should
// try for them. Values are float64 so integer windows and fractional
// multipliers share one representation; integer parameters truncate.
type ParamGrid map[string][]float64

// DefaultGrid returns the built-in sweep ranges for a strategy id.
func DefaultGrid(strategyID string) (ParamGrid, error) {
	switch strategyID {
	case "sma_cross":
		return ParamGrid{
			"short_window": {5, 10, 15, 20, 25},
			"long_window":  {30, 40, 50, 60, 70},
		}, nil
	case "bollinger":
		return ParamGrid{
			"window":  {10, 15, 20, 25, 30},
			"num_std": {1.5, 2.0, 2.5, 3.0},
		}, nil
	case "macd":
		return ParamGrid{
			"fast_period":   {8, 10, 12, 14, 16},
			"slow_period":   {20, 24, 26, 28, 30},
			"signal_period": {7, 8, 9, 10, 11},
		}, nil
	case "rsi":
		return ParamGrid{
			"period":     {7, 10, 14, 20, 25},
			"overbought": {65, 70, 75, 80},
			"oversold":   {20, 25, 30, 35},
		}, nil
	}
	return nil, &domain.UnknownStrategyError{StrategyID: strategyID}
}

// Merge overlays the caller's ranges onto the defaults. Parameters the
// override does not mention keep their default range. Override keys the
// strategy does not have, or empty value lists, are rejected.
func (g ParamGrid) Merge(overrides ParamGrid) (ParamGrid, error) {
	merged := make(ParamGrid, len(g))
	for name, values := range g {
		merged[name] = values
	}
	for name, values := range overrides {
		if _, ok := g[name]; !ok {
			return nil, &domain.ValidationError{
				Field:  "param_grid",
				Reason: fmt.Sprintf("unknown parameter %q", name),
			}
		}
		if len(values) == 0 {
			return nil, &domain.ValidationError{
				Field:  "param_grid",
				Reason: fmt.Sprintf("parameter %q has no candidate values", name),
			}
		}
		merged[name] = values
	}
	return merged, nil
}

// Combinations expands the grid into the cartesian product of its
// parameter values. Parameter names are walked in ascending order so
// the output order is deterministic.
func (g ParamGrid) Combinations() []map[string]float64 {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)

	combos := []map[string]float64{{}}
	for _, name := range names {
		next := make([]map[string]float64, 0, len(combos)*len(g[name]))
		for _, combo := range combos {
			for _, value := range g[name] {
				expanded := make(map[string]float64, len(combo)+1)
				for k, v := range combo {
					expanded[k] = v
				}
				expanded[name] = value
				next = append(next, expanded)
			}
		}
		combos = next
	}
	return combos
}

// FromParams builds a strategy instance from a flat parameter map.
// Parameters the map omits keep their default values.
func FromParams(strategyID string, params map[string]float64) (Strategy, error) {
	switch strategyID {
	case "sma_cross":
		p := DefaultSMACrossParams()
		if v, ok := params["short_window"]; ok {
			p.ShortWindow = int(v)
		}
		if v, ok := params["long_window"]; ok {
			p.LongWindow = int(v)
		}
		return NewSMACross(p), nil
	case "bollinger":
		p := DefaultBollingerParams()
		if v, ok := params["window"]; ok {
			p.Window = int(v)
		}
		if v, ok := params["num_std"]; ok {
			p.NumStd = v
		}
		return NewBollinger(p), nil
	case "macd":
		p := DefaultMACDParams()
		if v, ok := params["fast_period"]; ok {
			p.FastPeriod = int(v)
		}
		if v, ok := params["slow_period"]; ok {
			p.SlowPeriod = int(v)
		}
		if v, ok := params["signal_period"]; ok {
			p.SignalPeriod = int(v)
		}
		return NewMACD(p), nil
	case "rsi":
		p := DefaultRSIParams()
		if v, ok := params["period"]; ok {
			p.Period = int(v)
		}
		if v, ok := params["overbought"]; ok {
			p.Overbought = v
		}
		if v, ok := params["oversold"]; ok {
			p.Oversold = v
		}
		return NewRSI(p), nil
	}
	return nil, &domain.UnknownStrategyError{StrategyID: strategyID}
}
