package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/stratlab/stratrun/internal/config"
)

func newBacktestCmd() *cobra.Command {
	var (
		symbol   string
		strategy string
		period   string
		capital  float64
	)

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay a strategy against historical bars",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			svc, cleanup, err := buildService(cfg, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.Backtest(context.Background(), symbol, strategy, period, capital)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "Instrument symbol (required)")
	cmd.Flags().StringVar(&strategy, "strategy", "sma_cross", "Strategy id")
	cmd.Flags().StringVar(&period, "period", "1y", "History period (1w|1m|3m|6m|1y)")
	cmd.Flags().Float64Var(&capital, "capital", 10000, "Initial capital")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
