package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlab/stratrun/internal/domain"
)

func tradeAt(day int, entry, exit, size float64, dir domain.Direction) domain.Trade {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	pnl := (exit - entry) * size
	if dir == domain.Short {
		pnl = -pnl
	}
	return domain.Trade{
		EntryTime:  start.AddDate(0, 0, day),
		ExitTime:   start.AddDate(0, 0, day+1),
		EntryPrice: entry,
		ExitPrice:  exit,
		Direction:  dir,
		Size:       size,
		PnL:        pnl,
	}
}

func TestEvaluate(t *testing.T) {
	t.Run("ZeroTrades", func(t *testing.T) {
		m := Evaluate(nil, 1000)
		assert.Equal(t, 0, m.TradeCount)
		assert.Equal(t, 1000.0, m.FinalCapital)
		assert.Zero(t, m.TotalReturn)
		assert.Zero(t, m.MaxDrawdown)
		assert.Zero(t, m.WinRate)
		assert.Zero(t, m.SharpeRatio)
	})

	t.Run("FinalCapitalIdentity", func(t *testing.T) {
		trades := []domain.Trade{
			tradeAt(0, 100, 110, 10, domain.Long),  // +100
			tradeAt(2, 110, 100, 10, domain.Long),  // -100
			tradeAt(4, 100, 95, 10, domain.Short),  // +50
		}
		m := Evaluate(trades, 1000)
		sum := 0.0
		for _, tr := range trades {
			sum += tr.PnL
		}
		assert.InDelta(t, 1000+sum, m.FinalCapital, 1e-9)
		assert.InDelta(t, sum/1000, m.TotalReturn, 1e-9)
		assert.Equal(t, 3, m.TradeCount)
	})

	t.Run("WinRateAndAverages", func(t *testing.T) {
		trades := []domain.Trade{
			tradeAt(0, 100, 120, 1, domain.Long), // win, +20%
			tradeAt(2, 100, 110, 1, domain.Long), // win, +10%
			tradeAt(4, 100, 90, 1, domain.Long),  // loss, -10%
		}
		m := Evaluate(trades, 1000)
		assert.InDelta(t, 2.0/3, m.WinRate, 1e-9)
		assert.InDelta(t, 0.15, m.AvgWin, 1e-9)
		assert.InDelta(t, -0.10, m.AvgLoss, 1e-9)
	})

	t.Run("MaxDrawdownFromPeak", func(t *testing.T) {
		trades := []domain.Trade{
			tradeAt(0, 100, 120, 10, domain.Long), // capital 1000 -> 1200
			tradeAt(2, 120, 90, 10, domain.Long),  // 1200 -> 900
		}
		m := Evaluate(trades, 1000)
		assert.InDelta(t, 300.0/1200, m.MaxDrawdown, 1e-9)
	})

	t.Run("SharpeNeedsTwoTrades", func(t *testing.T) {
		m := Evaluate([]domain.Trade{tradeAt(0, 100, 120, 1, domain.Long)}, 1000)
		assert.Zero(t, m.SharpeRatio)
	})

	t.Run("SharpeZeroOnFlatReturns", func(t *testing.T) {
		trades := []domain.Trade{
			tradeAt(0, 100, 110, 1, domain.Long),
			tradeAt(2, 100, 110, 1, domain.Long),
		}
		m := Evaluate(trades, 1000)
		assert.Zero(t, m.SharpeRatio)
	})

	t.Run("BreakevenTradeCountsInTotalOnly", func(t *testing.T) {
		trades := []domain.Trade{
			tradeAt(0, 100, 110, 1, domain.Long),
			tradeAt(2, 100, 100, 1, domain.Long),
		}
		m := Evaluate(trades, 1000)
		assert.Equal(t, 2, m.TradeCount)
		assert.InDelta(t, 0.5, m.WinRate, 1e-9)
	})
}

func TestAnnualize(t *testing.T) {
	t.Run("CompoundsOverSpan", func(t *testing.T) {
		// 10% over one day compounds hard; just pin the direction and
		// the exact formula.
		trades := []domain.Trade{tradeAt(0, 100, 110, 1, domain.Long)}
		got := annualize(0.10, trades)
		want := math.Pow(1.10, 365) - 1
		assert.InDelta(t, want, got, want*1e-9)
	})

	t.Run("ZeroSpanReturnsTotal", func(t *testing.T) {
		tr := tradeAt(0, 100, 110, 1, domain.Long)
		tr.ExitTime = tr.EntryTime
		assert.Equal(t, 0.10, annualize(0.10, []domain.Trade{tr}))
	})

	t.Run("TotalLossFloorsAtMinusOne", func(t *testing.T) {
		trades := []domain.Trade{tradeAt(0, 100, 0, 1, domain.Long)}
		assert.Equal(t, -1.0, annualize(-1.0, trades))
	})
}

func TestEvaluateRequiresPositiveCapital(t *testing.T) {
	trades := []domain.Trade{tradeAt(0, 100, 110, 1, domain.Long)}
	m := Evaluate(trades, 0)
	require.Equal(t, 1, m.TradeCount)
	assert.Zero(t, m.TotalReturn)
	assert.Zero(t, m.FinalCapital)
}
