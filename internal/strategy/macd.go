package strategy

import "github.com/stratlab/stratrun/internal/domain"

// MACDParams configures the MACD momentum rule.
type MACDParams struct {
	FastPeriod   int `yaml:"fast_period"`
	SlowPeriod   int `yaml:"slow_period"`
	SignalPeriod int `yaml:"signal_period"`
}

// DefaultMACDParams returns the standard 12/26/9 configuration.
func DefaultMACDParams() MACDParams {
	return MACDParams{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}
}

// MACD trades the MACD line against its signal line: long while above,
// short while below, stop-and-reverse on the flip.
type MACD struct {
	params MACDParams
}

func NewMACD(p MACDParams) *MACD {
	return &MACD{params: p}
}

func (s *MACD) ID() string { return "macd" }

// Bias: momentum follower, near-full directional alignment.
func (s *MACD) Bias() float64 { return 0.9 }

func (s *MACD) Evaluate(history []domain.Bar, pos domain.Position) domain.Action {
	// EMAs are seeded from the first close; require the slow span plus
	// the signal span before trusting the lines.
	if len(history) < s.params.SlowPeriod+s.params.SignalPeriod {
		return domain.ActionHold
	}
	macd, sig := macdSeries(closes(history), s.params.FastPeriod, s.params.SlowPeriod, s.params.SignalPeriod)
	last := len(macd) - 1

	state := 0
	if macd[last] > sig[last] {
		state = 1
	} else if macd[last] < sig[last] {
		state = -1
	}

	if pos.Open {
		if pos.Direction == domain.Long && state < 0 {
			return domain.ActionExitLong
		}
		if pos.Direction == domain.Short && state > 0 {
			return domain.ActionExitShort
		}
		return domain.ActionHold
	}

	switch state {
	case 1:
		return domain.ActionEnterLong
	case -1:
		return domain.ActionEnterShort
	}
	return domain.ActionHold
}
