package strategy

import (
	"math"

	"github.com/stratlab/stratrun/internal/domain"
)

// BollingerParams configures the band-reversion rule.
type BollingerParams struct {
	Window int     `yaml:"window"`
	NumStd float64 `yaml:"num_std"`
}

// DefaultBollingerParams returns 20-period bands at 2 standard
// deviations.
func DefaultBollingerParams() BollingerParams {
	return BollingerParams{Window: 20, NumStd: 2.0}
}

// Bollinger fades band breaks: a close below the lower band enters long,
// a close above the upper band exits the long and, when flat, enters
// short.
type Bollinger struct {
	params BollingerParams
}

func NewBollinger(p BollingerParams) *Bollinger {
	return &Bollinger{params: p}
}

func (s *Bollinger) ID() string { return "bollinger" }

// Bias: mean-reversion entries lean on stretch, not broad direction.
func (s *Bollinger) Bias() float64 { return 0.6 }

func (s *Bollinger) Evaluate(history []domain.Bar, pos domain.Position) domain.Action {
	series := closes(history)
	mid := sma(series, s.params.Window)
	sd := stddev(series, s.params.Window)
	if math.IsNaN(mid) || math.IsNaN(sd) {
		return domain.ActionHold
	}

	price := series[len(series)-1]
	upper := mid + sd*s.params.NumStd
	lower := mid - sd*s.params.NumStd

	if pos.Open {
		if pos.Direction == domain.Long && price > upper {
			return domain.ActionExitLong
		}
		if pos.Direction == domain.Short && price < lower {
			return domain.ActionExitShort
		}
		return domain.ActionHold
	}

	if price < lower {
		return domain.ActionEnterLong
	}
	if price > upper {
		return domain.ActionEnterShort
	}
	return domain.ActionHold
}
