package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/stratlab/stratrun/internal/config"
)

func newScreenCmd() *cobra.Command {
	var (
		strategy string
		market   string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Rank a market universe by strategy fit",
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

			result, err := svc.Screen(context.Background(), strategy, market, limit)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "sma_cross", "Strategy id")
	cmd.Flags().StringVar(&market, "market", "us_large_cap", "Universe market name")
	cmd.Flags().IntVar(&limit, "limit", 20, "Max results, 0 for all")
	return cmd
}
