package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 30.0, cfg.Classifier.RSIOversold)
	assert.Equal(t, 0.40, cfg.Scorer.History)
	assert.Equal(t, 20, cfg.Strategies.SMACross.ShortWindow)
	assert.Equal(t, 8, cfg.Screener.Workers)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "config/universe.yaml", cfg.Providers.UniverseFile)
}

func TestLoad(t *testing.T) {
	t.Run("MissingFileReturnsDefaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default().Server.Port, cfg.Server.Port)
	})

	t.Run("FileOverridesDefaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9999
strategies:
  rsi:
    period: 7
    overbought: 80
    oversold: 20
screener:
  workers: 2
`), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9999, cfg.Server.Port)
		assert.Equal(t, 7, cfg.Strategies.RSI.Period)
		assert.Equal(t, 2, cfg.Screener.Workers)
		// Untouched sections keep their defaults.
		assert.Equal(t, 20, cfg.Strategies.SMACross.ShortWindow)
	})

	t.Run("MalformedFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("ALPHA_VANTAGE_API_KEY", "secret-key")
		t.Setenv("SENTIMENT_URL", "http://sentiment.local")
		t.Setenv("DATABASE_URL", "postgres://local/stratrun")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "secret-key", cfg.Providers.AlphaVantage.APIKey)
		assert.Equal(t, "http://sentiment.local", cfg.Providers.Sentiment.BaseURL)
		assert.Equal(t, "postgres://local/stratrun", cfg.Store.DSN)
	})
}

func TestRegistryFromConfig(t *testing.T) {
	cfg := Default()
	cfg.Strategies.RSI.Period = 7

	r := cfg.Registry()
	assert.Equal(t, []string{"bollinger", "macd", "rsi", "sma_cross"}, r.IDs())

	s, err := r.Get("rsi")
	require.NoError(t, err)
	assert.Equal(t, "rsi", s.ID())
}

func TestDurationAccessors(t *testing.T) {
	srv := ServerConfig{ReadTimeoutSeconds: 10, WriteTimeoutSeconds: 30, IdleTimeoutSeconds: 60}
	assert.Equal(t, "10s", srv.ReadTimeout().String())
	assert.Equal(t, "30s", srv.WriteTimeout().String())
	assert.Equal(t, "1m0s", srv.IdleTimeout().String())

	sent := SentimentConfig{TimeoutSeconds: 5}
	assert.Equal(t, "5s", sent.Timeout().String())
}
