package strategy

import (
	"math"

	"github.com/stratlab/stratrun/internal/domain"
)

// RSIParams configures the RSI reversion rule.
type RSIParams struct {
	Period     int     `yaml:"period"`
	Overbought float64 `yaml:"overbought"`
	Oversold   float64 `yaml:"oversold"`
}

// DefaultRSIParams returns the 14-period 30/70 configuration.
func DefaultRSIParams() RSIParams {
	return RSIParams{Period: 14, Overbought: 70, Oversold: 30}
}

// RSI fades momentum extremes: oversold enters long, overbought exits
// the long and, when flat, enters short.
type RSI struct {
	params RSIParams
}

func NewRSI(p RSIParams) *RSI {
	return &RSI{params: p}
}

func (s *RSI) ID() string { return "rsi" }

// Bias: contrarian entries, weakest dependence on the market call.
func (s *RSI) Bias() float64 { return 0.5 }

func (s *RSI) Evaluate(history []domain.Bar, pos domain.Position) domain.Action {
	rsi := rsiValue(closes(history), s.params.Period)
	if math.IsNaN(rsi) {
		return domain.ActionHold
	}

	if pos.Open {
		if pos.Direction == domain.Long && rsi > s.params.Overbought {
			return domain.ActionExitLong
		}
		if pos.Direction == domain.Short && rsi < s.params.Oversold {
			return domain.ActionExitShort
		}
		return domain.ActionHold
	}

	if rsi < s.params.Oversold {
		return domain.ActionEnterLong
	}
	if rsi > s.params.Overbought {
		return domain.ActionEnterShort
	}
	return domain.ActionHold
}
