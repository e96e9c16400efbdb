// Package cache decorates collaborators with a Redis TTL cache so
// repeated evaluations of the same symbol stay inside the upstream
// request budget.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/stratlab/stratrun/internal/data"
	"github.com/stratlab/stratrun/internal/domain"
	"github.com/stratlab/stratrun/internal/signals"
)

// Config for the cache layer.
type Config struct {
	Addr               string `yaml:"addr"`
	Password           string `yaml:"password"`
	DB                 int    `yaml:"db"`
	BarTTLSeconds      int    `yaml:"bar_ttl_seconds"`
	SnapshotTTLSeconds int    `yaml:"snapshot_ttl_seconds"`
}

// DefaultConfig caches bars for an hour and snapshots for five minutes.
func DefaultConfig() Config {
	return Config{
		Addr:               "localhost:6379",
		BarTTLSeconds:      3600,
		SnapshotTTLSeconds: 300,
	}
}

// BarTTL returns the bar cache TTL as a duration.
func (c Config) BarTTL() time.Duration { return time.Duration(c.BarTTLSeconds) * time.Second }

// SnapshotTTL returns the snapshot cache TTL as a duration.
func (c Config) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLSeconds) * time.Second
}

// Bars wraps a BarProvider with read-through caching. Cache failures
// degrade to the upstream provider, never to an error.
type Bars struct {
	next data.BarProvider
	rdb  *redis.Client
	ttl  time.Duration
}

// NewBars builds the bar cache over an upstream provider.
func NewBars(next data.BarProvider, rdb *redis.Client, ttl time.Duration) *Bars {
	return &Bars{next: next, rdb: rdb, ttl: ttl}
}

func (b *Bars) HistoricalBars(ctx context.Context, symbol, period string) ([]domain.Bar, error) {
	key := fmt.Sprintf("bars:%s:%s", symbol, period)
	if raw, err := b.rdb.Get(ctx, key).Bytes(); err == nil {
		var bars []domain.Bar
		if err := json.Unmarshal(raw, &bars); err == nil {
			return bars, nil
		}
		log.Warn().Str("key", key).Msg("dropping undecodable cache entry")
	}

	bars, err := b.next.HistoricalBars(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(bars); err == nil {
		if err := b.rdb.Set(ctx, key, raw, b.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return bars, nil
}

// Snapshots wraps an IndicatorProvider with read-through caching.
type Snapshots struct {
	next data.IndicatorProvider
	rdb  *redis.Client
	ttl  time.Duration
}

// NewSnapshots builds the snapshot cache over an upstream provider.
func NewSnapshots(next data.IndicatorProvider, rdb *redis.Client, ttl time.Duration) *Snapshots {
	return &Snapshots{next: next, rdb: rdb, ttl: ttl}
}

func (s *Snapshots) Snapshot(ctx context.Context, symbol string) (signals.Snapshot, error) {
	key := "snapshot:" + symbol
	if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var snap signals.Snapshot
		if err := json.Unmarshal(raw, &snap); err == nil {
			return snap, nil
		}
		log.Warn().Str("key", key).Msg("dropping undecodable cache entry")
	}

	snap, err := s.next.Snapshot(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(snap); err == nil {
		if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return snap, nil
}
