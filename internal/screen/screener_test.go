package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlab/stratrun/internal/domain"
	"github.com/stratlab/stratrun/internal/recommend"
	"github.com/stratlab/stratrun/internal/signals"
	"github.com/stratlab/stratrun/internal/strategy"
)

func testScreener(workers int) *Screener {
	scorer := recommend.NewScorer(
		strategy.DefaultRegistry(),
		signals.NewClassifier(signals.DefaultThresholds()),
		recommend.DefaultWeights(),
	)
	return NewScreener(scorer, workers)
}

// instrument builds a universe entry over a neutral snapshot; the fit
// score then depends only on the sentiment, which makes orderings easy
// to pin down.
func instrument(symbol string, sentiment float64) Instrument {
	return Instrument{
		UniverseEntry: domain.UniverseEntry{Symbol: symbol, Sector: "Test"},
		Snapshot:      probeSnapshot(),
		Sentiment:     sentiment,
	}
}

func TestScreen(t *testing.T) {
	t.Run("RanksDescendingByFit", func(t *testing.T) {
		s := testScreener(4)
		universe := []Instrument{
			instrument("CCC", 0.1),
			instrument("AAA", 0.9),
			instrument("BBB", 0.5),
		}

		res, err := s.Screen("sma_cross", "test", universe, 0)
		require.NoError(t, err)
		require.Len(t, res.Entries, 3)
		assert.Equal(t, "AAA", res.Entries[0].Symbol)
		assert.Equal(t, "BBB", res.Entries[1].Symbol)
		assert.Equal(t, "CCC", res.Entries[2].Symbol)
		assert.Greater(t, res.Entries[0].FitScore, res.Entries[1].FitScore)
		assert.Equal(t, "sma_cross", res.StrategyID)
		assert.Equal(t, "test", res.Market)
	})

	t.Run("TiesBreakOnSymbolAscending", func(t *testing.T) {
		s := testScreener(4)
		universe := []Instrument{
			instrument("ZZZ", 0.5),
			instrument("MMM", 0.5),
			instrument("AAA", 0.5),
		}

		res, err := s.Screen("sma_cross", "test", universe, 0)
		require.NoError(t, err)
		require.Len(t, res.Entries, 3)
		assert.Equal(t, "AAA", res.Entries[0].Symbol)
		assert.Equal(t, "MMM", res.Entries[1].Symbol)
		assert.Equal(t, "ZZZ", res.Entries[2].Symbol)
	})

	t.Run("LimitTruncates", func(t *testing.T) {
		s := testScreener(2)
		universe := []Instrument{
			instrument("AAA", 0.9),
			instrument("BBB", 0.5),
			instrument("CCC", 0.1),
		}

		res, err := s.Screen("sma_cross", "test", universe, 2)
		require.NoError(t, err)
		require.Len(t, res.Entries, 2)
		assert.Equal(t, "AAA", res.Entries[0].Symbol)
		assert.Equal(t, "BBB", res.Entries[1].Symbol)
	})

	t.Run("LimitZeroKeepsAll", func(t *testing.T) {
		s := testScreener(2)
		universe := []Instrument{instrument("AAA", 0.5), instrument("BBB", 0.5)}

		res, err := s.Screen("sma_cross", "test", universe, 0)
		require.NoError(t, err)
		assert.Len(t, res.Entries, 2)
	})

	t.Run("NegativeLimitRejected", func(t *testing.T) {
		s := testScreener(2)
		_, err := s.Screen("sma_cross", "test", nil, -1)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "limit", verr.Field)
	})

	t.Run("UnknownStrategy", func(t *testing.T) {
		s := testScreener(2)
		_, err := s.Screen("ghost", "test", nil, 0)
		var unknown *domain.UnknownStrategyError
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("BadSnapshotSkipped", func(t *testing.T) {
		s := testScreener(2)
		broken := instrument("BAD", 0.9)
		broken.Snapshot = signals.Snapshot{signals.KeyRSI: 50} // incomplete
		universe := []Instrument{broken, instrument("GOOD", 0.5)}

		res, err := s.Screen("sma_cross", "test", universe, 0)
		require.NoError(t, err)
		require.Len(t, res.Entries, 1)
		assert.Equal(t, "GOOD", res.Entries[0].Symbol)
	})

	t.Run("EmptyUniverse", func(t *testing.T) {
		s := testScreener(2)
		res, err := s.Screen("sma_cross", "test", nil, 0)
		require.NoError(t, err)
		assert.Empty(t, res.Entries)
	})
}

func TestNewScreenerWorkerFloor(t *testing.T) {
	s := NewScreener(nil, 0)
	assert.Equal(t, 1, s.workers)
}
