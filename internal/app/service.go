// Package app wires the evaluation core to its collaborators and
// exposes the service operations consumed by the CLI and HTTP surfaces.
package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stratlab/stratrun/internal/backtest"
	"github.com/stratlab/stratrun/internal/data"
	"github.com/stratlab/stratrun/internal/domain"
	"github.com/stratlab/stratrun/internal/metrics"
	"github.com/stratlab/stratrun/internal/recommend"
	"github.com/stratlab/stratrun/internal/screen"
	"github.com/stratlab/stratrun/internal/signals"
	"github.com/stratlab/stratrun/internal/strategy"
)

// ResultStore is the optional audit sink for evaluation results.
type ResultStore interface {
	SaveBacktest(ctx context.Context, symbol, strategyID, period string, performance any, tradeCount int) error
	SaveRecommendation(ctx context.Context, symbol, strategyID, action string, confidence float64, payload any) error
}

// Providers bundles the external collaborators.
type Providers struct {
	Bars       data.BarProvider
	Indicators data.IndicatorProvider
	Sentiment  data.SentimentProvider
	Universe   data.UniverseProvider
}

// Service is the evaluation facade. All operations are synchronous and
// side-effect free apart from optional audit writes; concurrent calls
// need no coordination.
type Service struct {
	registry *strategy.Registry
	engine   *backtest.Engine
	scorer   *recommend.Scorer
	screener *screen.Screener
	prov     Providers
	store    ResultStore
	metrics  *metrics.Registry
	workers  int
}

// Options for optional collaborators.
type Options struct {
	Store   ResultStore
	Metrics *metrics.Registry
	Workers int
}

// NewService assembles the facade.
func NewService(registry *strategy.Registry, classifier *signals.Classifier, weights recommend.Weights, prov Providers, opts Options) *Service {
	if opts.Workers < 1 {
		opts.Workers = 8
	}
	scorer := recommend.NewScorer(registry, classifier, weights)
	return &Service{
		registry: registry,
		engine:   backtest.NewEngine(registry),
		scorer:   scorer,
		screener: screen.NewScreener(scorer, opts.Workers),
		prov:     prov,
		store:    opts.Store,
		metrics:  opts.Metrics,
		workers:  opts.Workers,
	}
}

// StrategyIDs lists registered strategy ids in ascending order.
func (s *Service) StrategyIDs() []string {
	return s.registry.IDs()
}

// Backtest replays one strategy over the symbol's history and evaluates
// the realized trades.
func (s *Service) Backtest(ctx context.Context, symbol, strategyID, period string, initialCapital float64) (domain.BacktestResult, error) {
	done := s.observe("backtest")
	if symbol == "" {
		return domain.BacktestResult{}, done(&domain.ValidationError{Field: "symbol", Reason: "must not be empty"})
	}

	bars, err := s.prov.Bars.HistoricalBars(ctx, symbol, period)
	if err != nil {
		s.providerError("bars")
		return domain.BacktestResult{}, done(err)
	}

	trades, err := s.engine.Run(strategyID, bars, initialCapital)
	if err != nil {
		return domain.BacktestResult{}, done(err)
	}

	result := domain.BacktestResult{
		Symbol:      symbol,
		StrategyID:  strategyID,
		Period:      period,
		Performance: backtest.Evaluate(trades, initialCapital),
		Trades:      trades,
	}
	if s.metrics != nil {
		s.metrics.TradesSimmed.Add(float64(len(trades)))
	}
	s.audit(func() error {
		return s.store.SaveBacktest(ctx, symbol, strategyID, period, result.Performance, len(trades))
	})

	log.Debug().Str("symbol", symbol).Str("strategy", strategyID).
		Int("trades", len(trades)).
		Float64("total_return", result.Performance.TotalReturn).
		Msg("backtest complete")
	return result, done(nil)
}

// Recommend fetches the symbol's current snapshot and sentiment,
// backtests every registered strategy over a year of history, and ranks
// the candidates.
func (s *Service) Recommend(ctx context.Context, symbol, riskLevel string) (domain.Recommendation, error) {
	done := s.observe("recommend")
	if symbol == "" {
		return domain.Recommendation{}, done(&domain.ValidationError{Field: "symbol", Reason: "must not be empty"})
	}
	risk, err := domain.ParseRiskLevel(riskLevel)
	if err != nil {
		return domain.Recommendation{}, done(err)
	}

	snap, err := s.prov.Indicators.Snapshot(ctx, symbol)
	if err != nil {
		s.providerError("indicators")
		return domain.Recommendation{}, done(err)
	}
	sentiment, err := s.prov.Sentiment.Score(ctx, symbol)
	if err != nil {
		s.providerError("sentiment")
		return domain.Recommendation{}, done(err)
	}
	bars, err := s.prov.Bars.HistoricalBars(ctx, symbol, "1y")
	if err != nil {
		s.providerError("bars")
		return domain.Recommendation{}, done(err)
	}

	perStrategy := make(map[string]domain.PerformanceMetrics)
	const evalCapital = 10_000
	for _, id := range s.registry.IDs() {
		trades, err := s.engine.Run(id, bars, evalCapital)
		if err != nil {
			return domain.Recommendation{}, done(err)
		}
		perStrategy[id] = backtest.Evaluate(trades, evalCapital)
	}

	rec, err := s.scorer.Recommend(symbol, snap, sentiment, perStrategy, risk)
	if err != nil {
		return domain.Recommendation{}, done(err)
	}
	s.audit(func() error {
		return s.store.SaveRecommendation(ctx, symbol, rec.StrategyID, rec.Action, rec.Confidence, rec)
	})

	log.Debug().Str("symbol", symbol).Str("strategy", rec.StrategyID).
		Float64("confidence", rec.Confidence).Msg("recommendation complete")
	return rec, done(nil)
}

// Screen scores a market universe against one strategy. Instrument
// inputs are fetched concurrently; instruments whose collaborators fail
// are skipped with a warning so one bad symbol cannot sink the screen.
func (s *Service) Screen(ctx context.Context, strategyID, market string, limit int) (domain.ScreenResult, error) {
	done := s.observe("screen")
	if _, err := s.registry.Get(strategyID); err != nil {
		return domain.ScreenResult{}, done(err)
	}
	if limit < 0 {
		return domain.ScreenResult{}, done(&domain.ValidationError{Field: "limit", Reason: "must not be negative"})
	}

	entries, err := s.prov.Universe.Universe(ctx, market)
	if err != nil {
		s.providerError("universe")
		return domain.ScreenResult{}, done(err)
	}

	instruments := make([]screen.Instrument, len(entries))
	ok := make([]bool, len(entries))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entry := entries[i]
				snap, err := s.prov.Indicators.Snapshot(ctx, entry.Symbol)
				if err != nil {
					s.providerError("indicators")
					log.Warn().Err(err).Str("symbol", entry.Symbol).Msg("skipping instrument, snapshot unavailable")
					continue
				}
				score, err := s.prov.Sentiment.Score(ctx, entry.Symbol)
				if err != nil {
					s.providerError("sentiment")
					log.Warn().Err(err).Str("symbol", entry.Symbol).Msg("skipping instrument, sentiment unavailable")
					continue
				}
				instruments[i] = screen.Instrument{UniverseEntry: entry, Snapshot: snap, Sentiment: score}
				ok[i] = true
			}
		}()
	}
	for i := range entries {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	ready := make([]screen.Instrument, 0, len(instruments))
	for i, inst := range instruments {
		if ok[i] {
			ready = append(ready, inst)
		}
	}

	result, err := s.screener.Screen(strategyID, market, ready, limit)
	if err != nil {
		return domain.ScreenResult{}, done(err)
	}
	return result, done(nil)
}

// optimizeTopN caps how many ranked combinations an optimization
// reports.
const optimizeTopN = 5

// OptimizeCandidate is one evaluated parameter combination.
type OptimizeCandidate struct {
	Parameters  map[string]float64        `json:"parameters"`
	Performance domain.PerformanceMetrics `json:"performance"`
}

// OptimizeResult reports the best-performing parameter combinations
// for one strategy on one symbol.
type OptimizeResult struct {
	Symbol         string              `json:"symbol"`
	StrategyID     string              `json:"strategy"`
	Period         string              `json:"period"`
	ParameterCount int                 `json:"parameter_count"`
	TopResults     []OptimizeCandidate `json:"top_results"`
}

// Optimize backtests every combination of the strategy's parameter grid
// over the symbol's history and ranks the combinations by total return.
// Caller-supplied ranges override the defaults per parameter;
// combinations whose simulation fails are skipped with a warning.
func (s *Service) Optimize(ctx context.Context, symbol, strategyID, period string, overrides strategy.ParamGrid) (OptimizeResult, error) {
	done := s.observe("optimize")
	if symbol == "" {
		return OptimizeResult{}, done(&domain.ValidationError{Field: "symbol", Reason: "must not be empty"})
	}
	grid, err := strategy.DefaultGrid(strategyID)
	if err != nil {
		return OptimizeResult{}, done(err)
	}
	grid, err = grid.Merge(overrides)
	if err != nil {
		return OptimizeResult{}, done(err)
	}

	bars, err := s.prov.Bars.HistoricalBars(ctx, symbol, period)
	if err != nil {
		s.providerError("bars")
		return OptimizeResult{}, done(err)
	}

	const evalCapital = 10_000
	combos := grid.Combinations()
	candidates := make([]OptimizeCandidate, 0, len(combos))
	for _, params := range combos {
		strat, err := strategy.FromParams(strategyID, params)
		if err != nil {
			return OptimizeResult{}, done(err)
		}
		trades, err := s.engine.RunStrategy(strat, bars, evalCapital)
		if err != nil {
			log.Warn().Err(err).Str("strategy", strategyID).
				Msg("skipping parameter combination")
			continue
		}
		candidates = append(candidates, OptimizeCandidate{
			Parameters:  params,
			Performance: backtest.Evaluate(trades, evalCapital),
		})
		if s.metrics != nil {
			s.metrics.TradesSimmed.Add(float64(len(trades)))
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Performance.TotalReturn > candidates[j].Performance.TotalReturn
	})
	if len(candidates) > optimizeTopN {
		candidates = candidates[:optimizeTopN]
	}

	result := OptimizeResult{
		Symbol:         symbol,
		StrategyID:     strategyID,
		Period:         period,
		ParameterCount: len(combos),
		TopResults:     candidates,
	}
	log.Debug().Str("symbol", symbol).Str("strategy", strategyID).
		Int("combinations", len(combos)).Msg("optimization complete")
	return result, done(nil)
}

// StrategyWeights backtests every registered strategy for the symbol and
// converts the results into normalized allocation weights via a
// composite of return, Sharpe, win rate and drawdown.
func (s *Service) StrategyWeights(ctx context.Context, symbol, period string) (WeightsResult, error) {
	done := s.observe("weights")
	if symbol == "" {
		return WeightsResult{}, done(&domain.ValidationError{Field: "symbol", Reason: "must not be empty"})
	}

	bars, err := s.prov.Bars.HistoricalBars(ctx, symbol, period)
	if err != nil {
		s.providerError("bars")
		return WeightsResult{}, done(err)
	}

	const evalCapital = 10_000
	perStrategy := make(map[string]domain.PerformanceMetrics)
	for _, id := range s.registry.IDs() {
		trades, err := s.engine.Run(id, bars, evalCapital)
		if err != nil {
			return WeightsResult{}, done(err)
		}
		perStrategy[id] = backtest.Evaluate(trades, evalCapital)
	}

	result := WeightsResult{
		Symbol:  symbol,
		Period:  period,
		Weights: CompositeWeights(perStrategy),
		Metrics: perStrategy,
	}
	return result, done(nil)
}

// WeightsResult reports normalized per-strategy allocation weights.
type WeightsResult struct {
	Symbol  string                                `json:"symbol"`
	Period  string                                `json:"period"`
	Weights map[string]float64                    `json:"weights"`
	Metrics map[string]domain.PerformanceMetrics `json:"strategy_results"`
}

// CompositeWeights scores each strategy's metrics and normalizes the
// scores into weights. All-nonpositive scores fall back to an equal
// split.
func CompositeWeights(perStrategy map[string]domain.PerformanceMetrics) map[string]float64 {
	ids := make([]string, 0, len(perStrategy))
	for id := range perStrategy {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	scores := make(map[string]float64, len(ids))
	total := 0.0
	for _, id := range ids {
		m := perStrategy[id]
		score := m.TotalReturn*100 + m.SharpeRatio*20 + m.WinRate*50 + (1-m.MaxDrawdown)*30
		if score < 0 {
			score = 0
		}
		scores[id] = score
		total += score
	}

	weights := make(map[string]float64, len(ids))
	if total <= 0 {
		for _, id := range ids {
			weights[id] = 1.0 / float64(len(ids))
		}
		return weights
	}
	for _, id := range ids {
		weights[id] = scores[id] / total
	}
	return weights
}

// observe starts a timed operation; the returned func records duration
// and outcome and passes the error through.
func (s *Service) observe(operation string) func(error) error {
	start := time.Now()
	return func(err error) error {
		if s.metrics == nil {
			return err
		}
		s.metrics.EvalDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		if err != nil {
			s.metrics.EvalErrors.WithLabelValues(operation).Inc()
		} else {
			s.metrics.EvalTotal.WithLabelValues(operation).Inc()
		}
		return err
	}
}

func (s *Service) providerError(provider string) {
	if s.metrics != nil {
		s.metrics.ProviderErrors.WithLabelValues(provider).Inc()
	}
}

// audit runs a store write when a store is configured. Audit failures
// are logged, never surfaced; evaluation results do not depend on the
// store being reachable.
func (s *Service) audit(write func() error) {
	if s.store == nil {
		return
	}
	if err := write(); err != nil {
		log.Warn().Err(err).Msg("audit store write failed")
	}
}
