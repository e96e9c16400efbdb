// Package config loads service configuration from yaml with env
// overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stratlab/stratrun/internal/providers/alphavantage"
	"github.com/stratlab/stratrun/internal/providers/cache"
	"github.com/stratlab/stratrun/internal/recommend"
	"github.com/stratlab/stratrun/internal/signals"
	"github.com/stratlab/stratrun/internal/strategy"
)

// Config is the full service configuration.
type Config struct {
	Classifier signals.Thresholds `yaml:"classifier"`
	Scorer     recommend.Weights  `yaml:"scorer"`
	Strategies StrategyConfig     `yaml:"strategies"`
	Screener   ScreenerConfig     `yaml:"screener"`
	Providers  ProviderConfig     `yaml:"providers"`
	Server     ServerConfig       `yaml:"server"`
	Store      StoreConfig        `yaml:"store"`
}

// StrategyConfig carries per-strategy parameter overrides.
type StrategyConfig struct {
	SMACross  strategy.SMACrossParams  `yaml:"sma_cross"`
	Bollinger strategy.BollingerParams `yaml:"bollinger"`
	MACD      strategy.MACDParams      `yaml:"macd"`
	RSI       strategy.RSIParams       `yaml:"rsi"`
}

// ScreenerConfig bounds the screening worker pool.
type ScreenerConfig struct {
	Workers int `yaml:"workers"`
}

// ProviderConfig wires the external collaborators.
type ProviderConfig struct {
	AlphaVantage alphavantage.Config `yaml:"alphavantage"`
	Cache        CacheConfig         `yaml:"cache"`
	Sentiment    SentimentConfig     `yaml:"sentiment"`
	UniverseFile string              `yaml:"universe_file"`
}

// CacheConfig enables the Redis read-through cache.
type CacheConfig struct {
	Enabled      bool `yaml:"enabled"`
	cache.Config `yaml:",inline"`
}

// SentimentConfig points at the sentiment collaborator. An empty base
// URL disables sentiment (scores report 0).
type SentimentConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (c SentimentConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ServerConfig for the HTTP surface.
type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`
}

// ReadTimeout returns the read timeout as a duration.
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration.
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// IdleTimeout returns the idle timeout as a duration.
func (c ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

// StoreConfig enables the Postgres audit store. An empty DSN disables
// persistence.
type StoreConfig struct {
	DSN string `yaml:"dsn"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Classifier: signals.DefaultThresholds(),
		Scorer:     recommend.DefaultWeights(),
		Strategies: StrategyConfig{
			SMACross:  strategy.DefaultSMACrossParams(),
			Bollinger: strategy.DefaultBollingerParams(),
			MACD:      strategy.DefaultMACDParams(),
			RSI:       strategy.DefaultRSIParams(),
		},
		Screener: ScreenerConfig{Workers: 8},
		Providers: ProviderConfig{
			AlphaVantage: alphavantage.DefaultConfig(),
			Cache:        CacheConfig{Config: cache.DefaultConfig()},
			Sentiment:    SentimentConfig{TimeoutSeconds: 10},
			UniverseFile: "config/universe.yaml",
		},
		Server: ServerConfig{
			Host:                "127.0.0.1",
			Port:                8080,
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 30,
			IdleTimeoutSeconds:  60,
		},
	}
}

// Load reads the yaml file over the defaults, then applies env
// overrides. A missing path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return applyEnv(cfg), nil
			}
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return applyEnv(cfg), nil
}

// applyEnv pulls secrets from the environment so they stay out of the
// config file.
func applyEnv(cfg Config) Config {
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.Providers.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Providers.Cache.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("SENTIMENT_URL"); v != "" {
		cfg.Providers.Sentiment.BaseURL = v
	}
	return cfg
}

// Registry builds the strategy registry from the configured parameters.
func (c Config) Registry() *strategy.Registry {
	r := strategy.NewRegistry()
	r.Register(strategy.NewSMACross(c.Strategies.SMACross))
	r.Register(strategy.NewBollinger(c.Strategies.Bollinger))
	r.Register(strategy.NewMACD(c.Strategies.MACD))
	r.Register(strategy.NewRSI(c.Strategies.RSI))
	return r
}
