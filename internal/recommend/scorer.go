// Package recommend ranks candidate strategies for a symbol by combining
// current signal direction, sentiment, and historical backtest
// performance into a single weighted score.
package recommend

import (
	"math"
	"sort"

	"github.com/stratlab/stratrun/internal/domain"
	"github.com/stratlab/stratrun/internal/signals"
	"github.com/stratlab/stratrun/internal/strategy"
)

// Weights blends the three score components. Normalized to sum 1 before
// use.
type Weights struct {
	Direction float64 `yaml:"direction"`
	Sentiment float64 `yaml:"sentiment"`
	History   float64 `yaml:"history"`
}

// DefaultWeights favors realized performance slightly over the
// point-in-time view.
func DefaultWeights() Weights {
	return Weights{Direction: 0.35, Sentiment: 0.25, History: 0.40}
}

func (w Weights) normalized() Weights {
	sum := w.Direction + w.Sentiment + w.History
	if sum <= 0 {
		return DefaultWeights().normalized()
	}
	return Weights{
		Direction: w.Direction / sum,
		Sentiment: w.Sentiment / sum,
		History:   w.History / sum,
	}
}

// drawdownMultiplier scales the drawdown penalty by risk appetite.
func drawdownMultiplier(risk domain.RiskLevel) float64 {
	switch risk {
	case domain.RiskLow:
		return 1.5
	case domain.RiskHigh:
		return 0.5
	default:
		return 1.0
	}
}

// Scorer is stateless and safe for concurrent use.
type Scorer struct {
	registry   *strategy.Registry
	classifier *signals.Classifier
	weights    Weights
}

// NewScorer builds a scorer over the given registry and classifier.
func NewScorer(registry *strategy.Registry, classifier *signals.Classifier, weights Weights) *Scorer {
	return &Scorer{registry: registry, classifier: classifier, weights: weights.normalized()}
}

// Recommend picks the best strategy for the symbol.
//
// Per candidate: (a) the classifier's directional call scaled by the
// strategy's bias, (b) sentiment clamped to [-1,+1], (c) the historical
// Sharpe ratio normalized to [-1,+1] minus the max drawdown scaled by
// the risk-level multiplier. Ties break on lower max drawdown, then on
// strategy id ascending, so results are deterministic.
func (s *Scorer) Recommend(symbol string, snap signals.Snapshot, sentiment float64, perStrategy map[string]domain.PerformanceMetrics, risk domain.RiskLevel) (domain.Recommendation, error) {
	if len(perStrategy) == 0 {
		return domain.Recommendation{}, &domain.NoCandidatesError{Reason: "no strategy metrics supplied"}
	}

	result, err := s.classifier.Classify(snap)
	if err != nil {
		return domain.Recommendation{}, err
	}

	ids := make([]string, 0, len(perStrategy))
	for id := range perStrategy {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ddMult := drawdownMultiplier(risk)
	scores := make(map[string]float64, len(ids))

	best := ""
	bestScore := math.Inf(-1)
	bestDrawdown := math.Inf(1)

	for _, id := range ids {
		strat, err := s.registry.Get(id)
		if err != nil {
			return domain.Recommendation{}, err
		}
		metrics := perStrategy[id]

		a := result.Advice.Direction() * strat.Bias()
		b := clamp(sentiment, -1, 1)
		c := clamp(clamp(metrics.SharpeRatio/2, -1, 1)-ddMult*metrics.MaxDrawdown, -1, 1)

		score := s.weights.Direction*a + s.weights.Sentiment*b + s.weights.History*c
		scores[id] = score

		better := score > bestScore ||
			(score == bestScore && metrics.MaxDrawdown < bestDrawdown)
		// Equal score and drawdown falls through to the earlier id,
		// which is the alphabetical winner given the sorted walk.
		if best == "" || better {
			best = id
			bestScore = score
			bestDrawdown = metrics.MaxDrawdown
		}
	}

	sigNames := make([]string, len(result.Signals))
	for i, sig := range result.Signals {
		sigNames[i] = string(sig)
	}

	return domain.Recommendation{
		Symbol:     symbol,
		StrategyID: best,
		Action:     string(result.Advice),
		Confidence: clamp((bestScore+1)/2*100, 0, 100),
		Signals:    sigNames,
		Sentiment:  clamp(sentiment, -1, 1),
		Scores:     scores,
	}, nil
}

// Fit scores how well current conditions match one strategy's entry
// bias, using only the direction and sentiment components. This is the
// screener's per-instrument score; it deliberately avoids a historical
// backtest per instrument.
func (s *Scorer) Fit(strategyID string, snap signals.Snapshot, sentiment float64) (float64, error) {
	strat, err := s.registry.Get(strategyID)
	if err != nil {
		return 0, err
	}
	result, err := s.classifier.Classify(snap)
	if err != nil {
		return 0, err
	}

	wSum := s.weights.Direction + s.weights.Sentiment
	wDir := s.weights.Direction / wSum
	wSent := s.weights.Sentiment / wSum

	a := result.Advice.Direction() * strat.Bias()
	b := clamp(sentiment, -1, 1)
	return wDir*a + wSent*b, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
