// Package universe loads the static instrument universe definition used
// by the screener.
package universe

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/stratlab/stratrun/internal/domain"
)

// Config is the on-disk universe definition, one entry list per market.
type Config struct {
	Universe struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		LastUpdated string `yaml:"last_updated"`
	} `yaml:"universe"`
	Markets map[string][]domain.UniverseEntry `yaml:"markets"`
}

// Manager serves universe lookups from a loaded config. Safe for
// concurrent reads.
type Manager struct {
	mu      sync.RWMutex
	markets map[string][]domain.UniverseEntry
}

// Load reads and parses a universe yaml file.
func Load(path string) (*Manager, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse universe file %s: %w", path, err)
	}
	return NewManager(cfg.Markets), nil
}

// NewManager builds a manager over an in-memory market map.
func NewManager(markets map[string][]domain.UniverseEntry) *Manager {
	if markets == nil {
		markets = map[string][]domain.UniverseEntry{}
	}
	return &Manager{markets: markets}
}

// Universe returns a copy of the entries for the market, sorted by
// symbol. An unknown or empty market is a DataUnavailableError.
func (m *Manager) Universe(_ context.Context, market string) ([]domain.UniverseEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries, ok := m.markets[market]
	if !ok || len(entries) == 0 {
		return nil, &domain.DataUnavailableError{Source: "universe", Key: market}
	}
	out := make([]domain.UniverseEntry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// Markets lists known market names in ascending order.
func (m *Manager) Markets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.markets))
	for name := range m.markets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
