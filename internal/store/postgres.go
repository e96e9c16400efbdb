// Package store persists evaluation results to Postgres as a write-only
// audit trail. The evaluation core never reads it back.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store writes backtest summaries and recommendations.
type Store struct {
	db *sqlx.DB
}

// Open connects and verifies the database.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS backtest_results (
	id          UUID PRIMARY KEY,
	symbol      TEXT NOT NULL,
	strategy    TEXT NOT NULL,
	period      TEXT NOT NULL,
	performance JSONB NOT NULL,
	trade_count INT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS recommendations (
	id         UUID PRIMARY KEY,
	symbol     TEXT NOT NULL,
	strategy   TEXT NOT NULL,
	action     TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Migrate creates the result tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate result tables: %w", err)
	}
	return nil
}

// SaveBacktest records one backtest run.
func (s *Store) SaveBacktest(ctx context.Context, symbol, strategyID, period string, performance any, tradeCount int) error {
	perf, err := json.Marshal(performance)
	if err != nil {
		return fmt.Errorf("marshal performance: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO backtest_results (id, symbol, strategy, period, performance, trade_count)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), symbol, strategyID, period, perf, tradeCount)
	if err != nil {
		return fmt.Errorf("insert backtest result: %w", err)
	}
	return nil
}

// SaveRecommendation records one recommendation.
func (s *Store) SaveRecommendation(ctx context.Context, symbol, strategyID, action string, confidence float64, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal recommendation: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recommendations (id, symbol, strategy, action, confidence, payload)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), symbol, strategyID, action, confidence, raw)
	if err != nil {
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}
