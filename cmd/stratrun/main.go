package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "stratrun"
	version = "v1.2.0"
)

var configPath string

func main() {
	// Secrets come from the environment; .env is a development
	// convenience and absence is not an error.
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Trading strategy evaluation service",
		Version: version,
		Long: `stratrun backtests trading strategies against historical daily bars,
ranks strategies for a symbol from current signals, sentiment and
historical performance, and screens instrument universes for strategy
fit.`,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "Path to yaml config")

	rootCmd.AddCommand(newBacktestCmd())
	rootCmd.AddCommand(newOptimizeCmd())
	rootCmd.AddCommand(newRecommendCmd())
	rootCmd.AddCommand(newScreenCmd())
	rootCmd.AddCommand(newWeightsCmd())
	rootCmd.AddCommand(newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
