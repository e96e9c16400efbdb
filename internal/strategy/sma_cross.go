package strategy

import (
	"math"

	"github.com/stratlab/stratrun/internal/domain"
)

// SMACrossParams configures the moving-average crossover rule.
type SMACrossParams struct {
	ShortWindow int `yaml:"short_window"`
	LongWindow  int `yaml:"long_window"`
}

// DefaultSMACrossParams returns the 20/50 crossover.
func DefaultSMACrossParams() SMACrossParams {
	return SMACrossParams{ShortWindow: 20, LongWindow: 50}
}

// SMACross trades the short/long simple moving average relation: long
// while the short average is above the long average, short while below.
// Open positions are stopped and reversed across consecutive bars when
// the relation flips.
type SMACross struct {
	params SMACrossParams
}

func NewSMACross(p SMACrossParams) *SMACross {
	return &SMACross{params: p}
}

func (s *SMACross) ID() string { return "sma_cross" }

// Bias: pure trend follower, fully aligned with the market call.
func (s *SMACross) Bias() float64 { return 1.0 }

func (s *SMACross) Evaluate(history []domain.Bar, pos domain.Position) domain.Action {
	series := closes(history)
	short := sma(series, s.params.ShortWindow)
	long := sma(series, s.params.LongWindow)
	if math.IsNaN(short) || math.IsNaN(long) {
		return domain.ActionHold
	}

	state := 0
	if short > long {
		state = 1
	} else if short < long {
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
