// Package screen applies one strategy's fit function across an
// instrument universe and ranks the results.
package screen

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/stratlab/stratrun/internal/domain"
	"github.com/stratlab/stratrun/internal/recommend"
	"github.com/stratlab/stratrun/internal/signals"
)

// Instrument is one universe entry with the point-in-time inputs the fit
// function needs.
type Instrument struct {
	domain.UniverseEntry
	Snapshot  signals.Snapshot
	Sentiment float64
}

// Screener fans instrument scoring out to a bounded worker pool. Ranking
// happens after all scores are collected, so completion order never
// affects the result.
type Screener struct {
	scorer  *recommend.Scorer
	workers int
}

// NewScreener builds a screener; workers < 1 falls back to 1.
func NewScreener(scorer *recommend.Scorer, workers int) *Screener {
	if workers < 1 {
		workers = 1
	}
	return &Screener{scorer: scorer, workers: workers}
}

// Screen scores every instrument against the strategy and returns the
// ranking, descending by fit score with ties broken by symbol ascending.
// limit 0 means no truncation; a negative limit is a validation error.
// Instruments whose snapshots fail classification are skipped with a
// warning rather than failing the whole screen.
func (s *Screener) Screen(strategyID, market string, universe []Instrument, limit int) (domain.ScreenResult, error) {
	if limit < 0 {
		return domain.ScreenResult{}, &domain.ValidationError{Field: "limit", Reason: "must not be negative"}
	}

	// Fail fast on an unknown strategy before spinning up workers.
	if _, err := s.scorer.Fit(strategyID, probeSnapshot(), 0); err != nil {
		return domain.ScreenResult{}, err
	}

	type scored struct {
		entry domain.ScreenEntry
		ok    bool
	}
	results := make([]scored, len(universe))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				inst := universe[i]
				fit, err := s.scorer.Fit(strategyID, inst.Snapshot, inst.Sentiment)
				if err != nil {
					log.Warn().Err(err).Str("symbol", inst.Symbol).Msg("skipping instrument in screen")
					continue
				}
				results[i] = scored{
					entry: domain.ScreenEntry{Symbol: inst.Symbol, Sector: inst.Sector, FitScore: fit},
					ok:    true,
				}
			}
		}()
	}

	for i := range universe {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	entries := make([]domain.ScreenEntry, 0, len(universe))
	for _, r := range results {
		if r.ok {
			entries = append(entries, r.entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].FitScore != entries[j].FitScore {
			return entries[i].FitScore > entries[j].FitScore
		}
		return entries[i].Symbol < entries[j].Symbol
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return domain.ScreenResult{StrategyID: strategyID, Market: market, Entries: entries}, nil
}

// probeSnapshot is a complete snapshot of neutral values used only to
// verify the strategy id is registered.
func probeSnapshot() signals.Snapshot {
	return signals.Snapshot{
		signals.KeyCurrentPrice: 100, signals.KeyRSI: 50,
		signals.KeyMACD: 0, signals.KeyMACDSignal: 0,
		signals.KeyBBHigh: 110, signals.KeyBBLow: 90,
		signals.KeySMA20: 100, signals.KeySMA50: 100, signals.KeySMA200: 100,
		signals.KeyVolume: 1000, signals.KeyVolumeEMA20: 1000,
		signals.KeyStochK: 50, signals.KeyStochD: 50, signals.KeyADX: 20,
	}
}
