package strategy

import (
	"math"

	"github.com/stratlab/stratrun/internal/domain"
)

// closes extracts the close series from a bar history.
func closes(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// sma returns the simple moving average of the last n values, or NaN
// while the window is warming up.
func sma(values []float64, n int) float64 {
	if n <= 0 || len(values) < n {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n)
}

// stddev returns the sample standard deviation of the last n values.
func stddev(values []float64, n int) float64 {
	if n <= 1 || len(values) < n {
		return math.NaN()
	}
	window := values[len(values)-n:]
	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(n)
	sumSq := 0.0
	for _, v := range window {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// emaSeries computes an exponential moving average over the full series
// with span n, seeded from the first value. Matches the adjust=false
// recurrence of the upstream indicator feed.
func emaSeries(values []float64, n int) []float64 {
	if len(values) == 0 || n <= 0 {
		return nil
	}
	alpha := 2.0 / (float64(n) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// macdSeries returns the MACD line and its signal line for the series.
func macdSeries(values []float64, fast, slow, signal int) (macd, sig []float64) {
	fastEMA := emaSeries(values, fast)
	slowEMA := emaSeries(values, slow)
	macd = make([]float64, len(values))
	for i := range values {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	sig = emaSeries(macd, signal)
	return macd, sig
}

// rsiValue computes the current RSI over the given period using simple
// rolling averages of gains and losses, or NaN during warmup.
func rsiValue(values []float64, period int) float64 {
	if period <= 0 || len(values) < period+1 {
		return math.NaN()
	}
	window := values[len(values)-period-1:]
	gain, loss := 0.0, 0.0
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
