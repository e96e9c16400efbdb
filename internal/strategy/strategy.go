// Package strategy defines the pluggable trading rule interface and the
// registry of built-in strategies.
package strategy

import (
	"sort"
	"sync"

	"github.com/stratlab/stratrun/internal/domain"
)

// Strategy is a deterministic trading rule. Evaluate sees only the bar
// history up to and including the current bar plus the current position
// slot, and must not keep state between calls or depend on the clock.
type Strategy interface {
	// ID is the registry key, stable across runs.
	ID() string

	// Evaluate maps visible history and position state to an action.
	// Implementations return HOLD while their lookback windows are
	// still warming up.
	Evaluate(history []domain.Bar, pos domain.Position) domain.Action

	// Bias is the strategy's typical directional alignment in [0,1]:
	// how strongly a bullish market call supports taking this
	// strategy's entries. Trend followers sit near 1, mean-reversion
	// entries depend less on broad direction.
	Bias() float64
}

// Registry maps strategy ids to implementations. Safe for concurrent
// reads after setup.
type Registry struct {
	mu   sync.RWMutex
	byID map[string]Strategy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Strategy)}
}

// DefaultRegistry returns a registry with the four built-in strategies
// under their default parameters.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewSMACross(DefaultSMACrossParams()))
	r.Register(NewBollinger(DefaultBollingerParams()))
	r.Register(NewMACD(DefaultMACDParams()))
	r.Register(NewRSI(DefaultRSIParams()))
	return r
}

// Register adds or replaces a strategy under its id.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID()] = s
}

// Get looks up a strategy by id.
func (r *Registry) Get(id string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, &domain.UnknownStrategyError{StrategyID: id}
	}
	return s, nil
}

// IDs returns registered strategy ids in ascending order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
