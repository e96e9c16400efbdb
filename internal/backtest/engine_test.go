package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlab/stratrun/internal/domain"
	"github.com/stratlab/stratrun/internal/strategy"
)

// scripted replays a fixed action per bar index, ignoring history
// content and position state.
type scripted struct {
	id      string
	actions []domain.Action
}

func (s *scripted) ID() string    { return s.id }
func (s *scripted) Bias() float64 { return 1 }

func (s *scripted) Evaluate(history []domain.Bar, _ domain.Position) domain.Action {
	i := len(history) - 1
	if i >= len(s.actions) {
		return domain.ActionHold
	}
	return s.actions[i]
}

func registryWith(strategies ...strategy.Strategy) *strategy.Registry {
	r := strategy.NewRegistry()
	for _, s := range strategies {
		r.Register(s)
	}
	return r
}

func dailyBars(closes ...float64) []domain.Bar {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{Timestamp: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 100}
	}
	return bars
}

func TestEngineRun(t *testing.T) {
	t.Run("RoundTripLong", func(t *testing.T) {
		e := NewEngine(registryWith(&scripted{id: "s", actions: []domain.Action{
			domain.ActionEnterLong, domain.ActionHold, domain.ActionExitLong,
		}}))
		bars := dailyBars(100, 110, 120)

		trades, err := e.Run("s", bars, 10_000)
		require.NoError(t, err)
		require.Len(t, trades, 1)

		tr := trades[0]
		assert.Equal(t, domain.Long, tr.Direction)
		assert.Equal(t, 100.0, tr.EntryPrice)
		assert.Equal(t, 120.0, tr.ExitPrice)
		assert.Equal(t, 100.0, tr.Size) // all-in: 10000/100
		assert.InDelta(t, 2000.0, tr.PnL, 1e-9)
		assert.False(t, tr.ForceClose)
		assert.True(t, tr.ExitTime.After(tr.EntryTime))
	})

	t.Run("ForceCloseAtLastBar", func(t *testing.T) {
		e := NewEngine(registryWith(&scripted{id: "s", actions: []domain.Action{
			domain.ActionEnterLong, domain.ActionHold, domain.ActionHold,
		}}))
		bars := dailyBars(100, 110, 90)

		trades, err := e.Run("s", bars, 100)
		require.NoError(t, err)
		require.Len(t, trades, 1)

		tr := trades[0]
		assert.True(t, tr.ForceClose)
		assert.Equal(t, 90.0, tr.ExitPrice)
		assert.InDelta(t, -10.0, tr.PnL, 1e-9) // 1 unit, 100 -> 90
	})

	t.Run("ShortPnLNegated", func(t *testing.T) {
		e := NewEngine(registryWith(&scripted{id: "s", actions: []domain.Action{
			domain.ActionEnterShort, domain.ActionExitShort,
		}}))
		bars := dailyBars(100, 90)

		trades, err := e.Run("s", bars, 100)
		require.NoError(t, err)
		require.Len(t, trades, 1)
		assert.Equal(t, domain.Short, trades[0].Direction)
		assert.InDelta(t, 10.0, trades[0].PnL, 1e-9)
	})

	t.Run("InvalidActionsIgnored", func(t *testing.T) {
		// Exit without a position, enter while open, mismatched exit
		// direction: all treated as HOLD.
		e := NewEngine(registryWith(&scripted{id: "s", actions: []domain.Action{
			domain.ActionExitLong,
			domain.ActionEnterLong,
			domain.ActionEnterShort,
			domain.ActionExitShort,
			domain.ActionExitLong,
		}}))
		bars := dailyBars(100, 100, 100, 100, 120)

		trades, err := e.Run("s", bars, 100)
		require.NoError(t, err)
		require.Len(t, trades, 1)
		assert.Equal(t, domain.Long, trades[0].Direction)
		assert.InDelta(t, 20.0, trades[0].PnL, 1e-9)
	})

	t.Run("FinalBarEntrySkipped", func(t *testing.T) {
		e := NewEngine(registryWith(&scripted{id: "s", actions: []domain.Action{
			domain.ActionHold, domain.ActionHold, domain.ActionEnterLong,
		}}))
		trades, err := e.Run("s", dailyBars(100, 101, 102), 100)
		require.NoError(t, err)
		assert.Empty(t, trades)
	})

	t.Run("CapitalCompounds", func(t *testing.T) {
		e := NewEngine(registryWith(&scripted{id: "s", actions: []domain.Action{
			domain.ActionEnterLong, domain.ActionExitLong,
			domain.ActionEnterLong, domain.ActionExitLong,
		}}))
		bars := dailyBars(100, 200, 100, 200)

		trades, err := e.Run("s", bars, 100)
		require.NoError(t, err)
		require.Len(t, trades, 2)
		// First trade doubles capital, second entry is sized from 200.
		assert.InDelta(t, 1.0, trades[0].Size, 1e-9)
		assert.InDelta(t, 2.0, trades[1].Size, 1e-9)
		assert.InDelta(t, 100.0, trades[0].PnL, 1e-9)
		assert.InDelta(t, 200.0, trades[1].PnL, 1e-9)
	})

	t.Run("Deterministic", func(t *testing.T) {
		reg := registryWith(strategy.NewSMACross(strategy.SMACrossParams{ShortWindow: 2, LongWindow: 4}))
		e := NewEngine(reg)
		bars := dailyBars(100, 105, 103, 110, 120, 90, 80, 85, 95, 130)

		first, err := e.Run("sma_cross", bars, 10_000)
		require.NoError(t, err)
		second, err := e.Run("sma_cross", bars, 10_000)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestEngineRunStrategy(t *testing.T) {
	t.Run("UnregisteredInstance", func(t *testing.T) {
		e := NewEngine(registryWith())
		strat := &scripted{id: "adhoc", actions: []domain.Action{
			domain.ActionEnterLong, domain.ActionHold, domain.ActionExitLong,
		}}
		bars := dailyBars(100, 110, 120)

		trades, err := e.RunStrategy(strat, bars, 10_000)
		require.NoError(t, err)
		require.Len(t, trades, 1)
		assert.InDelta(t, 2000.0, trades[0].PnL, 1e-9)
	})

	t.Run("BadCapital", func(t *testing.T) {
		e := NewEngine(registryWith())
		_, err := e.RunStrategy(&scripted{id: "adhoc"}, dailyBars(100), 0)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestEngineRunValidation(t *testing.T) {
	e := NewEngine(registryWith(&scripted{id: "s"}))

	t.Run("UnknownStrategy", func(t *testing.T) {
		_, err := e.Run("missing", dailyBars(100), 100)
		var unknown *domain.UnknownStrategyError
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("NonPositiveCapital", func(t *testing.T) {
		_, err := e.Run("s", dailyBars(100), 0)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "initial_capital", verr.Field)
	})

	t.Run("UnorderedBars", func(t *testing.T) {
		bars := dailyBars(100, 101)
		bars[1].Timestamp = bars[0].Timestamp
		_, err := e.Run("s", bars, 100)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "bars", verr.Field)
	})

	t.Run("EmptyBars", func(t *testing.T) {
		trades, err := e.Run("s", nil, 100)
		require.NoError(t, err)
		assert.Empty(t, trades)
	})
}
