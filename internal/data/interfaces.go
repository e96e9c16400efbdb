// Package data declares the narrow interfaces through which the
// evaluation core consumes external collaborators. Retrieval happens
// before the core is invoked; nothing inside the core blocks on I/O.
package data

import (
	"context"

	"github.com/stratlab/stratrun/internal/domain"
	"github.com/stratlab/stratrun/internal/signals"
)

// BarProvider supplies ordered historical bars for a symbol and period
// (e.g. "1w", "1m", "3m", "6m", "1y").
type BarProvider interface {
	HistoricalBars(ctx context.Context, symbol, period string) ([]domain.Bar, error)
}

// IndicatorProvider supplies the current indicator snapshot for a
// symbol.
type IndicatorProvider interface {
	Snapshot(ctx context.Context, symbol string) (signals.Snapshot, error)
}

// SentimentProvider supplies a sentiment score in [-1,+1].
type SentimentProvider interface {
	Score(ctx context.Context, symbol string) (float64, error)
}

// UniverseProvider supplies the instrument universe for a market.
type UniverseProvider interface {
	Universe(ctx context.Context, market string) ([]domain.UniverseEntry, error)
}
