package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/stratlab/stratrun/internal/app"
	"github.com/stratlab/stratrun/internal/config"
	"github.com/stratlab/stratrun/internal/data"
	"github.com/stratlab/stratrun/internal/metrics"
	"github.com/stratlab/stratrun/internal/providers/alphavantage"
	"github.com/stratlab/stratrun/internal/providers/cache"
	"github.com/stratlab/stratrun/internal/providers/indicators"
	"github.com/stratlab/stratrun/internal/providers/sentiment"
	"github.com/stratlab/stratrun/internal/signals"
	"github.com/stratlab/stratrun/internal/store"
	"github.com/stratlab/stratrun/internal/universe"
)

// buildService assembles the full collaborator graph from config.
// The returned cleanup releases any opened resources.
func buildService(cfg config.Config, reg *prometheus.Registry) (*app.Service, func(), error) {
	var bars data.BarProvider = alphavantage.New(cfg.Providers.AlphaVantage)
	var indicatorProv data.IndicatorProvider

	cleanup := func() {}
	if cfg.Providers.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Providers.Cache.Addr,
			Password: cfg.Providers.Cache.Password,
			DB:       cfg.Providers.Cache.DB,
		})
		bars = cache.NewBars(bars, rdb, cfg.Providers.Cache.BarTTL())
		// The snapshot cache sits above indicator derivation so a hit
		// skips both the math and the upstream fetch.
		indicatorProv = cache.NewSnapshots(indicators.New(bars), rdb, cfg.Providers.Cache.SnapshotTTL())
		cleanup = func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close")
			}
		}
	} else {
		indicatorProv = indicators.New(bars)
	}

	universeMgr, err := universe.Load(cfg.Providers.UniverseFile)
	if err != nil {
		return nil, nil, err
	}

	opts := app.Options{
		Metrics: metrics.NewRegistry(reg),
		Workers: cfg.Screener.Workers,
	}
	if cfg.Store.DSN != "" {
		st, err := store.Open(cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := st.Migrate(context.Background()); err != nil {
			return nil, nil, err
		}
		opts.Store = st
		prev := cleanup
		cleanup = func() {
			if err := st.Close(); err != nil {
				log.Warn().Err(err).Msg("store close")
			}
			prev()
		}
	}

	svc := app.NewService(
		cfg.Registry(),
		signals.NewClassifier(cfg.Classifier),
		cfg.Scorer,
		app.Providers{
			Bars:       bars,
			Indicators: indicatorProv,
			Sentiment:  sentiment.New(cfg.Providers.Sentiment.BaseURL, cfg.Providers.Sentiment.Timeout()),
			Universe:   universeMgr,
		},
		opts,
	)
	return svc, cleanup, nil
}
