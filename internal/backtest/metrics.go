package backtest

import (
	"math"

	"github.com/stratlab/stratrun/internal/domain"
)

// Evaluate derives aggregate performance from a trade sequence. Trades
// are applied to a running capital value in order, which is
// chronological by construction of the engine.
//
// Guards: zero trades yields zeroed metrics (final capital equal to the
// initial), a Sharpe sample of fewer than two trades or zero deviation
// reports 0, and an all-intraday span leaves annualized return equal to
// total return.
func Evaluate(trades []domain.Trade, initialCapital float64) domain.PerformanceMetrics {
	m := domain.PerformanceMetrics{
		TradeCount:   len(trades),
		FinalCapital: initialCapital,
	}
	if initialCapital <= 0 || len(trades) == 0 {
		return m
	}

	capital := initialCapital
	peak := initialCapital
	maxDrawdown := 0.0
	wins, losses := 0, 0
	winSum, lossSum := 0.0, 0.0
	returns := make([]float64, 0, len(trades))

	for _, t := range trades {
		capital += t.PnL
		if capital > peak {
			peak = capital
		}
		if peak > 0 {
			if dd := (peak - capital) / peak; dd > maxDrawdown {
				maxDrawdown = dd
			}
		}

		r := t.Return()
		returns = append(returns, r)
		switch {
		case t.PnL > 0:
			wins++
			winSum += r
		case t.PnL < 0:
			losses++
			lossSum += r
		}
	}

	m.FinalCapital = capital
	m.TotalReturn = (capital - initialCapital) / initialCapital
	m.MaxDrawdown = maxDrawdown
	m.WinRate = float64(wins) / float64(len(trades))
	if wins > 0 {
		m.AvgWin = winSum / float64(wins)
	}
	if losses > 0 {
		m.AvgLoss = lossSum / float64(losses)
	}
	m.SharpeRatio = sharpe(returns)
	m.AnnualizedReturn = annualize(m.TotalReturn, trades)
	return m
}

// sharpe is mean over sample standard deviation of per-trade returns.
// Fewer than two trades or a flat sample is insufficient data, reported
// as 0 rather than an error.
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	sumSq := 0.0
	for _, r := range returns {
		d := r - mean
		sumSq += d * d
	}
	sd := math.Sqrt(sumSq / float64(len(returns)-1))
	if sd == 0 {
		return 0
	}
	return mean / sd
}

// annualize compounds the total return over the calendar span from first
// entry to last exit. A zero-day span reports the total return as-is.
func annualize(totalReturn float64, trades []domain.Trade) float64 {
	span := trades[len(trades)-1].ExitTime.Sub(trades[0].EntryTime)
	days := span.Hours() / 24
	if days <= 0 {
		return totalReturn
	}
	growth := 1 + totalReturn
	if growth <= 0 {
		// Total loss of capital cannot be compounded; report the flat
		// annualized floor.
		return -1
	}
	return math.Pow(growth, 365/days) - 1
}
