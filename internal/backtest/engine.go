// Package backtest replays strategies against historical bar series and
// measures the resulting trade performance.
package backtest

import (
	"github.com/stratlab/stratrun/internal/domain"
	"github.com/stratlab/stratrun/internal/strategy"
)

// Engine runs single-position simulations. Stateless between runs and
// safe for concurrent use; each run allocates its own position slot.
type Engine struct {
	registry *strategy.Registry
}

// NewEngine builds an engine over the given strategy registry.
func NewEngine(registry *strategy.Registry) *Engine {
	return &Engine{registry: registry}
}

// Run replays the identified strategy over the bar series in timestamp
// order and returns the realized trade sequence.
//
// Each bar the strategy sees only the history up to and including that
// bar. One position slot is maintained; actions that are invalid for the
// current state are treated as HOLD so a misbehaving strategy cannot
// corrupt the simulation. A position still open after the final bar is
// force-closed at the last close ("mark-to-last-close") so every run
// ends with fully realized P&L. Entries are sized all-in from running
// capital at the entry close.
//
// An empty bar series returns an empty trade sequence.
func (e *Engine) Run(strategyID string, bars []domain.Bar, initialCapital float64) ([]domain.Trade, error) {
	strat, err := e.registry.Get(strategyID)
	if err != nil {
		return nil, err
	}
	return e.RunStrategy(strat, bars, initialCapital)
}

// RunStrategy replays a strategy instance directly, bypassing the
// registry. Parameter sweeps use this to simulate ad-hoc candidates
// without registering them.
func (e *Engine) RunStrategy(strat strategy.Strategy, bars []domain.Bar, initialCapital float64) ([]domain.Trade, error) {
	if initialCapital <= 0 {
		return nil, &domain.ValidationError{Field: "initial_capital", Reason: "must be positive"}
	}
	if err := validateBars(bars); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return []domain.Trade{}, nil
	}

	trades := []domain.Trade{}
	capital := initialCapital
	var pos domain.Position

	for i, bar := range bars {
		action := strat.Evaluate(bars[:i+1], pos)

		switch action {
		case domain.ActionEnterLong, domain.ActionEnterShort:
			// An entry on the final bar could never realize without a
			// later exit price, so it is skipped rather than opened
			// and immediately marked flat.
			if pos.Open || i == len(bars)-1 || bar.Close <= 0 {
				continue
			}
			dir := domain.Long
			if action == domain.ActionEnterShort {
				dir = domain.Short
			}
			pos = domain.Position{
				Open:       true,
				Direction:  dir,
				EntryPrice: bar.Close,
				EntryTime:  bar.Timestamp,
				Size:       capital / bar.Close,
			}

		case domain.ActionExitLong:
			if !pos.Open || pos.Direction != domain.Long {
				continue
			}
			trade := closePosition(pos, bar, false)
			capital += trade.PnL
			trades = append(trades, trade)
			pos = domain.Position{}

		case domain.ActionExitShort:
			if !pos.Open || pos.Direction != domain.Short {
				continue
			}
			trade := closePosition(pos, bar, false)
			capital += trade.PnL
			trades = append(trades, trade)
			pos = domain.Position{}
		}
	}

	if pos.Open {
		trade := closePosition(pos, bars[len(bars)-1], true)
		capital += trade.PnL
		trades = append(trades, trade)
	}

	return trades, nil
}

func closePosition(pos domain.Position, bar domain.Bar, forced bool) domain.Trade {
	pnl := (bar.Close - pos.EntryPrice) * pos.Size
	if pos.Direction == domain.Short {
		pnl = -pnl
	}
	return domain.Trade{
		EntryTime:  pos.EntryTime,
		ExitTime:   bar.Timestamp,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  bar.Close,
		Direction:  pos.Direction,
		Size:       pos.Size,
		PnL:        pnl,
		Holding:    bar.Timestamp.Sub(pos.EntryTime),
		ForceClose: forced,
	}
}

// validateBars rejects unordered or duplicate timestamps before any
// simulation work begins.
func validateBars(bars []domain.Bar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			return &domain.ValidationError{
				Field:  "bars",
				Reason: "timestamps must be strictly increasing",
			}
		}
	}
	return nil
}
