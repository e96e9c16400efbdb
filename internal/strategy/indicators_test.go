package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 4.0, sma(values, 3))
	assert.Equal(t, 3.0, sma(values, 5))
	assert.True(t, math.IsNaN(sma(values, 6)))
	assert.True(t, math.IsNaN(sma(values, 0)))
}

func TestStddev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	// Known sample: population sd 2, sample sd sqrt(32/7).
	assert.InDelta(t, math.Sqrt(32.0/7), stddev(values, 8), 1e-9)
	assert.True(t, math.IsNaN(stddev(values, 1)))
	assert.True(t, math.IsNaN(stddev(values, 9)))
}

func TestEMASeries(t *testing.T) {
	values := []float64{10, 20, 30}
	out := emaSeries(values, 3) // alpha = 0.5
	assert.Equal(t, 10.0, out[0])
	assert.InDelta(t, 15.0, out[1], 1e-9)
	assert.InDelta(t, 22.5, out[2], 1e-9)

	assert.Nil(t, emaSeries(nil, 3))
}

func TestMACDSeries(t *testing.T) {
	values := []float64{100, 102, 104, 106, 108, 110}
	macd, sig := macdSeries(values, 2, 4, 2)
	assert.Len(t, macd, len(values))
	assert.Len(t, sig, len(values))
	assert.Equal(t, 0.0, macd[0])
	// Rising series keeps the fast EMA above the slow one.
	assert.Greater(t, macd[len(macd)-1], 0.0)
}

func TestRSIValue(t *testing.T) {
	t.Run("AllGains", func(t *testing.T) {
		assert.Equal(t, 100.0, rsiValue([]float64{1, 2, 3, 4}, 3))
	})
	t.Run("AllLosses", func(t *testing.T) {
		assert.Equal(t, 0.0, rsiValue([]float64{4, 3, 2, 1}, 3))
	})
	t.Run("FlatSeries", func(t *testing.T) {
		assert.Equal(t, 50.0, rsiValue([]float64{5, 5, 5, 5}, 3))
	})
	t.Run("Warmup", func(t *testing.T) {
		assert.True(t, math.IsNaN(rsiValue([]float64{1, 2}, 3)))
	})
	t.Run("Mixed", func(t *testing.T) {
		// Gains 3, losses 1 over the window: RS=3, RSI=75.
		got := rsiValue([]float64{100, 101, 100, 102}, 3)
		assert.InDelta(t, 75.0, got, 1e-9)
	})
}
