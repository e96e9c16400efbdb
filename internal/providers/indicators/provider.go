// Package indicators derives the point-in-time indicator snapshot from
// historical bars, so the classifier and screener run off the same bar
// feed as the backtester.
package indicators

import (
	"context"
	"math"

	"github.com/stratlab/stratrun/internal/data"
	"github.com/stratlab/stratrun/internal/domain"
	"github.com/stratlab/stratrun/internal/signals"
)

// minHistory is the deepest lookback in the snapshot (SMA 200).
const minHistory = 200

// Provider computes snapshots over a BarProvider's one-year daily
// series.
type Provider struct {
	bars data.BarProvider
}

// New builds the provider over a bar source.
func New(bars data.BarProvider) *Provider {
	return &Provider{bars: bars}
}

// Snapshot fetches a year of bars and computes the full indicator set at
// the latest bar. A series too short for the deepest lookback is
// reported as unavailable data rather than a partial snapshot.
func (p *Provider) Snapshot(ctx context.Context, symbol string) (signals.Snapshot, error) {
	bars, err := p.bars.HistoricalBars(ctx, symbol, "1y")
	if err != nil {
		return nil, err
	}
	if len(bars) < minHistory {
		return nil, &domain.DataUnavailableError{Source: "indicators", Key: symbol}
	}
	return Compute(bars), nil
}

// Compute builds the snapshot from an ordered bar series. The caller
// guarantees at least minHistory bars.
func Compute(bars []domain.Bar) signals.Snapshot {
	n := len(bars)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
		volumes[i] = b.Volume
	}

	macd, macdSignal := macdAt(closes, 12, 26, 9)
	bbHigh, bbLow := bollingerAt(closes, 20, 2.0)
	stochK, stochD := stochasticAt(highs, lows, closes, 14, 3)

	return signals.Snapshot{
		signals.KeyCurrentPrice: closes[n-1],
		signals.KeySMA20:        smaAt(closes, 20),
		signals.KeySMA50:        smaAt(closes, 50),
		signals.KeySMA200:       smaAt(closes, 200),
		signals.KeyRSI:          rsiAt(closes, 14),
		signals.KeyMACD:         macd,
		signals.KeyMACDSignal:   macdSignal,
		signals.KeyBBHigh:       bbHigh,
		signals.KeyBBLow:        bbLow,
		signals.KeyVolume:       volumes[n-1],
		signals.KeyVolumeEMA20:  emaAt(volumes, 20),
		signals.KeyStochK:       stochK,
		signals.KeyStochD:       stochD,
		signals.KeyADX:          adxAt(highs, lows, closes, 14),
	}
}

func smaAt(values []float64, n int) float64 {
	window := values[len(values)-n:]
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(n)
}

func emaAt(values []float64, span int) float64 {
	alpha := 2.0 / (float64(span) + 1.0)
	ema := values[0]
	for _, v := range values[1:] {
		ema = alpha*v + (1-alpha)*ema
	}
	return ema
}

func emaSeries(values []float64, span int) []float64 {
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func macdAt(closes []float64, fast, slow, signal int) (line, sig float64) {
	fastEMA := emaSeries(closes, fast)
	slowEMA := emaSeries(closes, slow)
	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	sigSeries := emaSeries(macd, signal)
	return macd[len(macd)-1], sigSeries[len(sigSeries)-1]
}

func bollingerAt(closes []float64, window int, numStd float64) (high, low float64) {
	mid := smaAt(closes, window)
	w := closes[len(closes)-window:]
	sumSq := 0.0
	for _, v := range w {
		d := v - mid
		sumSq += d * d
	}
	sd := math.Sqrt(sumSq / float64(window-1))
	return mid + numStd*sd, mid - numStd*sd
}

func rsiAt(closes []float64, period int) float64 {
	window := closes[len(closes)-period-1:]
	gain, loss := 0.0, 0.0
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	if loss == 0 {
		if gain == 0 {
			return 50
		}
		return 100
	}
	rs := gain / loss
	return 100 - 100/(1+rs)
}

func stochasticAt(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d float64) {
	rawK := func(end int) float64 {
		hh := math.Inf(-1)
		ll := math.Inf(1)
		for i := end - kPeriod + 1; i <= end; i++ {
			hh = math.Max(hh, highs[i])
			ll = math.Min(ll, lows[i])
		}
		if hh == ll {
			return 50
		}
		return 100 * (closes[end] - ll) / (hh - ll)
	}

	last := len(closes) - 1
	kSum := 0.0
	for i := 0; i < dPeriod; i++ {
		kSum += rawK(last - i)
	}
	return rawK(last), kSum / float64(dPeriod)
}

// adxAt computes Wilder's ADX.
func adxAt(highs, lows, closes []float64, period int) float64 {
	n := len(closes)
	if n < 2*period+1 {
		return 0
	}

	trs := make([]float64, 0, n-1)
	plusDMs := make([]float64, 0, n-1)
	minusDMs := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		tr := math.Max(highs[i]-lows[i],
			math.Max(math.Abs(highs[i]-closes[i-1]), math.Abs(lows[i]-closes[i-1])))
		trs = append(trs, tr)

		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		plusDM, minusDM := 0.0, 0.0
		if up > down && up > 0 {
			plusDM = up
		}
		if down > up && down > 0 {
			minusDM = down
		}
		plusDMs = append(plusDMs, plusDM)
		minusDMs = append(minusDMs, minusDM)
	}

	wilder := func(values []float64) []float64 {
		out := make([]float64, 0, len(values)-period+1)
		sum := 0.0
		for _, v := range values[:period] {
			sum += v
		}
		out = append(out, sum)
		for _, v := range values[period:] {
			sum = sum - sum/float64(period) + v
			out = append(out, sum)
		}
		return out
	}

	trSmooth := wilder(trs)
	plusSmooth := wilder(plusDMs)
	minusSmooth := wilder(minusDMs)

	dxs := make([]float64, 0, len(trSmooth))
	for i := range trSmooth {
		if trSmooth[i] == 0 {
			dxs = append(dxs, 0)
			continue
		}
		plusDI := 100 * plusSmooth[i] / trSmooth[i]
		minusDI := 100 * minusSmooth[i] / trSmooth[i]
		if plusDI+minusDI == 0 {
			dxs = append(dxs, 0)
			continue
		}
		dxs = append(dxs, 100*math.Abs(plusDI-minusDI)/(plusDI+minusDI))
	}
	if len(dxs) < period {
		return 0
	}

	adx := 0.0
	for _, dx := range dxs[:period] {
		adx += dx
	}
	adx /= float64(period)
	for _, dx := range dxs[period:] {
		adx = (adx*float64(period-1) + dx) / float64(period)
	}
	return adx
}
