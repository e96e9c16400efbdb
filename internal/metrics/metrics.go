// Package metrics exposes the Prometheus instruments for the evaluation
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all instruments. Operation label values: backtest,
// recommend, screen, weights.
type Registry struct {
	EvalDuration   *prometheus.HistogramVec
	EvalTotal      *prometheus.CounterVec
	EvalErrors     *prometheus.CounterVec
	ProviderErrors *prometheus.CounterVec
	TradesSimmed   prometheus.Counter
}

// NewRegistry registers all instruments on the given registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		EvalDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stratrun_eval_duration_seconds",
			Help:    "Duration of evaluation operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		EvalTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stratrun_eval_total",
			Help: "Completed evaluation operations",
		}, []string{"operation"}),
		EvalErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stratrun_eval_errors_total",
			Help: "Failed evaluation operations",
		}, []string{"operation"}),
		ProviderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stratrun_provider_errors_total",
			Help: "Collaborator call failures by provider",
		}, []string{"provider"}),
		TradesSimmed: factory.NewCounter(prometheus.CounterOpts{
			Name: "stratrun_trades_simulated_total",
			Help: "Trades produced by backtest simulations",
		}),
	}
}
