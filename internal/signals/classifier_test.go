package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlab/stratrun/internal/domain"
)

// neutralSnapshot is a complete snapshot that triggers no bullish or
// bearish vote in any family except the always-voting MACD comparison,
// which callers override as needed.
func neutralSnapshot() Snapshot {
	return Snapshot{
		KeyCurrentPrice: 100,
		KeyRSI:          50,
		KeyMACD:         0,
		KeyMACDSignal:   0.01, // at-or-below reads bearish; tests override for bullish cases
		KeyBBHigh:       110,
		KeyBBLow:        90,
		KeySMA20:        101, // price below SMA20 but SMA stack unaligned
		KeySMA50:        99,
		KeySMA200:       100,
		KeyVolume:       1000,
		KeyVolumeEMA20:  1000,
		KeyStochK:       50,
		KeyStochD:       50,
		KeyADX:          20,
	}
}

func TestClassifySignals(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	t.Run("OversoldMACDBullishStrongTrend", func(t *testing.T) {
		snap := neutralSnapshot()
		snap[KeyRSI] = 25
		snap[KeyMACD] = 0.1
		snap[KeyMACDSignal] = 0.05
		snap[KeyADX] = 30

		res, err := c.Classify(snap)
		require.NoError(t, err)

		assert.True(t, res.Has(SignalOversold))
		assert.True(t, res.Has(SignalMACDBullish))
		assert.True(t, res.Has(SignalStrongTrend))
		assert.False(t, res.Has(SignalOverbought))
		assert.Equal(t, AdviceBuy, res.Advice)
		assert.Equal(t, 2, res.Bullish)
		assert.Equal(t, 0, res.Bearish)
	})

	t.Run("OverboughtBearish", func(t *testing.T) {
		snap := neutralSnapshot()
		snap[KeyRSI] = 80
		snap[KeyStochK] = 90
		snap[KeyStochD] = 85

		res, err := c.Classify(snap)
		require.NoError(t, err)

		assert.True(t, res.Has(SignalOverbought))
		assert.True(t, res.Has(SignalMACDBearish))
		assert.Equal(t, AdviceSell, res.Advice)
		assert.Equal(t, 3, res.Bearish)
	})

	t.Run("MovingAverageStackBullish", func(t *testing.T) {
		snap := neutralSnapshot()
		snap[KeyCurrentPrice] = 120
		snap[KeySMA20] = 115
		snap[KeySMA50] = 110
		snap[KeySMA200] = 100
		snap[KeyBBHigh] = 200 // keep within bands

		res, err := c.Classify(snap)
		require.NoError(t, err)
		assert.True(t, res.Has(SignalMABullish))
	})

	t.Run("VolumeNonDirectional", func(t *testing.T) {
		snap := neutralSnapshot()
		snap[KeyVolume] = 1200
		snap[KeyVolumeEMA20] = 1000

		res, err := c.Classify(snap)
		require.NoError(t, err)
		assert.True(t, res.Has(SignalVolumeIncrease))
		// The one bearish vote is the MACD family; volume must not
		// add a directional vote.
		assert.Equal(t, 0, res.Bullish)
		assert.Equal(t, 1, res.Bearish)
	})

	t.Run("VolumeEMAUnavailable", func(t *testing.T) {
		snap := neutralSnapshot()
		snap[KeyVolume] = 1200
		snap[KeyVolumeEMA20] = 0

		res, err := c.Classify(snap)
		require.NoError(t, err)
		assert.False(t, res.Has(SignalVolumeIncrease))
		assert.False(t, res.Has(SignalVolumeDecrease))
		assert.Equal(t, "volume EMA unavailable", res.Analysis["volume"])
		assert.NotContains(t, res.Analysis["volume"], "Inf")
	})

	t.Run("WeakTrendDefault", func(t *testing.T) {
		res, err := c.Classify(neutralSnapshot())
		require.NoError(t, err)
		assert.True(t, res.Has(SignalWeakTrend))
		assert.True(t, res.Has(SignalNeutral))
	})
}

func TestClassifyMissingKey(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	snap := neutralSnapshot()
	delete(snap, KeyADX)

	_, err := c.Classify(snap)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KeyADX, verr.Field)
}

func TestClassifyConfidence(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	t.Run("GrowsWithSpread", func(t *testing.T) {
		one := neutralSnapshot() // MACD bearish only, spread 1
		resOne, err := c.Classify(one)
		require.NoError(t, err)

		three := neutralSnapshot()
		three[KeyRSI] = 80
		three[KeyStochK] = 90
		three[KeyStochD] = 85
		resThree, err := c.Classify(three)
		require.NoError(t, err)

		assert.InDelta(t, 100.0/7, resOne.Confidence, 1e-9)
		assert.InDelta(t, 300.0/7, resThree.Confidence, 1e-9)
		assert.Greater(t, resThree.Confidence, resOne.Confidence)
	})

	t.Run("SymmetricForBothDirections", func(t *testing.T) {
		bull := neutralSnapshot()
		bull[KeyMACD] = 1
		bull[KeyMACDSignal] = 0
		resBull, err := c.Classify(bull)
		require.NoError(t, err)

		resBear, err := c.Classify(neutralSnapshot())
		require.NoError(t, err)

		assert.Equal(t, resBear.Confidence, resBull.Confidence)
		assert.Equal(t, AdviceBuy, resBull.Advice)
		assert.Equal(t, AdviceSell, resBear.Advice)
	})
}

func TestClassifySignalsSorted(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	snap := neutralSnapshot()
	snap[KeyRSI] = 25
	snap[KeyADX] = 40
	snap[KeyVolume] = 2000

	res, err := c.Classify(snap)
	require.NoError(t, err)
	for i := 1; i < len(res.Signals); i++ {
		assert.LessOrEqual(t, string(res.Signals[i-1]), string(res.Signals[i]))
	}
}

func TestAdviceDirection(t *testing.T) {
	assert.Equal(t, 1.0, AdviceBuy.Direction())
	assert.Equal(t, -1.0, AdviceSell.Direction())
	assert.Equal(t, 0.0, AdviceHold.Direction())
}
