package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/stratlab/stratrun/internal/config"
)

func newRecommendCmd() *cobra.Command {
	var (
		symbol    string
		riskLevel string
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank strategies for a symbol from signals, sentiment and backtests",
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

			rec, err := svc.Recommend(context.Background(), symbol, riskLevel)
			if err != nil {
				return err
			}
			return printJSON(rec)
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "Instrument symbol (required)")
	cmd.Flags().StringVar(&riskLevel, "risk-level", "medium", "Risk appetite (low|medium|high)")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}
