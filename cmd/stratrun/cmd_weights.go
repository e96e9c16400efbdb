package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/stratlab/stratrun/internal/config"
)

func newWeightsCmd() *cobra.Command {
	var (
		symbol string
		period string
	)

	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Derive strategy allocation weights from backtests",
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

			result, err := svc.StrategyWeights(context.Background(), symbol, period)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "Instrument symbol (required)")
	cmd.Flags().StringVar(&period, "period", "1y", "History period (1w|1m|3m|6m|1y)")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}
