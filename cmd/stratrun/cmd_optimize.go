package main

import (
	"context"
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/stratlab/stratrun/internal/config"
	"github.com/stratlab/stratrun/internal/domain"
	"github.com/stratlab/stratrun/internal/strategy"
)

func newOptimizeCmd() *cobra.Command {
	var (
		symbol     string
		strategyID string
		period     string
		gridJSON   string
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Sweep a strategy's parameter grid and rank the combinations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var grid strategy.ParamGrid
			if gridJSON != "" {
				if err := json.Unmarshal([]byte(gridJSON), &grid); err != nil {
					return &domain.ValidationError{Field: "grid", Reason: "malformed JSON"}
				}
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			svc, cleanup, err := buildService(cfg, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.Optimize(context.Background(), symbol, strategyID, period, grid)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "Instrument symbol (required)")
	cmd.Flags().StringVar(&strategyID, "strategy", "sma_cross", "Strategy id")
	cmd.Flags().StringVar(&period, "period", "1y", "History period (1w|1m|3m|6m|1y)")
	cmd.Flags().StringVar(&gridJSON, "grid", "", `Parameter ranges as JSON, e.g. '{"short_window":[5,10]}'`)
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}
