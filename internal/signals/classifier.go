// Package signals maps technical indicator snapshots to discrete signal
// sets and a directional recommendation.
package signals

import (
	"fmt"
	"sort"

	"github.com/stratlab/stratrun/internal/domain"
)

// Snapshot is a point-in-time mapping of indicator name to value,
// produced by an external indicator provider. Key names follow the
// upstream indicator feed and are part of the wire contract.
type Snapshot map[string]float64

// Snapshot keys required by the classifier.
const (
	KeyCurrentPrice = "Current_Price"
	KeyRSI          = "RSI"
	KeyMACD         = "MACD"
	KeyMACDSignal   = "MACD_Signal"
	KeyBBHigh       = "BB_High"
	KeyBBLow        = "BB_Low"
	KeySMA20        = "SMA_20"
	KeySMA50        = "SMA_50"
	KeySMA200       = "SMA_200"
	KeyVolume       = "Volume"
	KeyVolumeEMA20  = "Volume_EMA20"
	KeyStochK       = "Stoch_K"
	KeyStochD       = "Stoch_D"
	KeyADX          = "ADX"
)

var requiredKeys = []string{
	KeyCurrentPrice, KeyRSI, KeyMACD, KeyMACDSignal, KeyBBHigh, KeyBBLow,
	KeySMA20, KeySMA50, KeySMA200, KeyVolume, KeyVolumeEMA20,
	KeyStochK, KeyStochD, KeyADX,
}

// Signal is a discrete interpretation of one indicator family's state.
type Signal string

const (
	SignalOversold       Signal = "OVERSOLD"
	SignalOverbought     Signal = "OVERBOUGHT"
	SignalNeutral        Signal = "NEUTRAL"
	SignalMACDBullish    Signal = "MACD_BULLISH"
	SignalMACDBearish    Signal = "MACD_BEARISH"
	SignalMABullish      Signal = "MA_BULLISH"
	SignalMABearish      Signal = "MA_BEARISH"
	SignalVolumeIncrease Signal = "VOLUME_INCREASE"
	SignalVolumeDecrease Signal = "VOLUME_DECREASE"
	SignalStrongTrend    Signal = "STRONG_TREND"
	SignalWeakTrend      Signal = "WEAK_TREND"
)

// Advice is the classifier's directional call.
type Advice string

const (
	AdviceBuy  Advice = "BUY"
	AdviceSell Advice = "SELL"
	AdviceHold Advice = "HOLD"
)

// Thresholds holds the classification cutoffs. Exposed as named fields so
// they can be tuned from config without touching classifier logic.
type Thresholds struct {
	RSIOversold     float64 `yaml:"rsi_oversold"`
	RSIOverbought   float64 `yaml:"rsi_overbought"`
	VolumeMargin    float64 `yaml:"volume_margin"`
	ADXTrend        float64 `yaml:"adx_trend"`
	StochOversold   float64 `yaml:"stoch_oversold"`
	StochOverbought float64 `yaml:"stoch_overbought"`
}

// DefaultThresholds returns the standard cutoffs: RSI 30/70, 10% volume
// margin, ADX 25, stochastic 20/80.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RSIOversold:     30,
		RSIOverbought:   70,
		VolumeMargin:    0.10,
		ADXTrend:        25,
		StochOversold:   20,
		StochOverbought: 80,
	}
}

// Result is a full classification of one snapshot.
type Result struct {
	Signals    []Signal          `json:"signals"`
	Analysis   map[string]string `json:"analysis"`
	Advice     Advice            `json:"recommendation"`
	Confidence float64           `json:"confidence"`
	Bullish    int               `json:"bullish"`
	Bearish    int               `json:"bearish"`
}

// Has reports whether the classification produced the given signal.
func (r Result) Has(s Signal) bool {
	for _, got := range r.Signals {
		if got == s {
			return true
		}
	}
	return false
}

// Classifier evaluates indicator families independently against fixed
// thresholds. Stateless and safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier builds a classifier with the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{thresholds: t}
}

// signalCategories is the number of independently evaluated indicator
// families, the denominator for confidence.
const signalCategories = 7

// Classify evaluates every indicator family against the snapshot. Each
// family contributes at most one directional vote; the spread between
// bullish and bearish votes sets the advice and confidence. A snapshot
// missing a required key fails with a ValidationError; the classifier
// never substitutes a default for a required indicator.
func (c *Classifier) Classify(snap Snapshot) (Result, error) {
	for _, key := range requiredKeys {
		if _, ok := snap[key]; !ok {
			return Result{}, &domain.ValidationError{Field: key, Reason: "required indicator missing from snapshot"}
		}
	}

	t := c.thresholds
	set := map[Signal]bool{}
	analysis := make(map[string]string, signalCategories)
	bullish, bearish := 0, 0

	// RSI
	switch rsi := snap[KeyRSI]; {
	case rsi < t.RSIOversold:
		set[SignalOversold] = true
		bullish++
		analysis["rsi"] = fmt.Sprintf("RSI %.1f below %.0f, oversold", rsi, t.RSIOversold)
	case rsi > t.RSIOverbought:
		set[SignalOverbought] = true
		bearish++
		analysis["rsi"] = fmt.Sprintf("RSI %.1f above %.0f, overbought", rsi, t.RSIOverbought)
	default:
		set[SignalNeutral] = true
		analysis["rsi"] = fmt.Sprintf("RSI %.1f in neutral range", rsi)
	}

	// MACD vs signal line
	if snap[KeyMACD] > snap[KeyMACDSignal] {
		set[SignalMACDBullish] = true
		bullish++
		analysis["macd"] = "MACD above signal line, bullish momentum"
	} else {
		set[SignalMACDBearish] = true
		bearish++
		analysis["macd"] = "MACD at or below signal line, bearish momentum"
	}

	// Moving average stack
	price, s20, s50, s200 := snap[KeyCurrentPrice], snap[KeySMA20], snap[KeySMA50], snap[KeySMA200]
	switch {
	case price > s20 && s20 > s50 && s50 > s200:
		set[SignalMABullish] = true
		bullish++
		analysis["moving_averages"] = "price above SMA20 > SMA50 > SMA200, strong uptrend alignment"
	case price < s20 && s20 < s50 && s50 < s200:
		set[SignalMABearish] = true
		bearish++
		analysis["moving_averages"] = "price below SMA20 < SMA50 < SMA200, strong downtrend alignment"
	default:
		analysis["moving_averages"] = "moving averages mixed, no clean alignment"
	}

	// Bollinger band position. Band breakouts are read as stretch, the
	// same mean-reversion convention the band strategy trades.
	switch {
	case price < snap[KeyBBLow]:
		bullish++
		analysis["bollinger"] = "price below lower band, breakout-low"
	case price > snap[KeyBBHigh]:
		bearish++
		analysis["bollinger"] = "price above upper band, breakout-high"
	default:
		analysis["bollinger"] = "price within bands"
	}

	// Volume vs its EMA-20, non-directional
	vol, volEMA := snap[KeyVolume], snap[KeyVolumeEMA20]
	switch {
	case volEMA <= 0:
		analysis["volume"] = "volume EMA unavailable"
	case vol > volEMA*(1+t.VolumeMargin):
		set[SignalVolumeIncrease] = true
		analysis["volume"] = fmt.Sprintf("volume %.0f%% above its EMA-20", (vol/volEMA-1)*100)
	case vol < volEMA*(1-t.VolumeMargin):
		set[SignalVolumeDecrease] = true
		analysis["volume"] = fmt.Sprintf("volume %.0f%% below its EMA-20", (1-vol/volEMA)*100)
	default:
		analysis["volume"] = "volume near its EMA-20"
	}

	// Stochastic %K/%D
	k, d := snap[KeyStochK], snap[KeyStochD]
	switch {
	case k < t.StochOversold && d < t.StochOversold:
		set[SignalOversold] = true
		bullish++
		analysis["stochastic"] = fmt.Sprintf("stochastic %%K %.1f / %%D %.1f oversold", k, d)
	case k > t.StochOverbought && d > t.StochOverbought:
		set[SignalOverbought] = true
		bearish++
		analysis["stochastic"] = fmt.Sprintf("stochastic %%K %.1f / %%D %.1f overbought", k, d)
	default:
		set[SignalNeutral] = true
		analysis["stochastic"] = "stochastic in neutral range"
	}

	// ADX trend strength, non-directional
	if adx := snap[KeyADX]; adx > t.ADXTrend {
		set[SignalStrongTrend] = true
		analysis["adx"] = fmt.Sprintf("ADX %.1f, trending market", adx)
	} else {
		set[SignalWeakTrend] = true
		analysis["adx"] = fmt.Sprintf("ADX %.1f, weak or absent trend", snap[KeyADX])
	}

	advice := AdviceHold
	if bullish > bearish {
		advice = AdviceBuy
	} else if bearish > bullish {
		advice = AdviceSell
	}

	spread := bullish - bearish
	if spread < 0 {
		spread = -spread
	}
	confidence := float64(spread) / signalCategories * 100
	if confidence > 100 {
		confidence = 100
	}

	out := make([]Signal, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return Result{
		Signals:    out,
		Analysis:   analysis,
		Advice:     advice,
		Confidence: confidence,
		Bullish:    bullish,
		Bearish:    bearish,
	}, nil
}

// Direction maps the advice onto a signed value: BUY +1, SELL -1, HOLD 0.
func (a Advice) Direction() float64 {
	switch a {
	case AdviceBuy:
		return 1
	case AdviceSell:
		return -1
	}
	return 0
}
