package domain

import "time"

// Bar is one OHLCV observation for a fixed interval. Bar sequences are
// ordered by strictly increasing timestamp and treated as immutable.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Direction of a position or trade.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Action is a strategy's decision for one bar.
type Action string

const (
	ActionEnterLong  Action = "ENTER_LONG"
	ActionExitLong   Action = "EXIT_LONG"
	ActionEnterShort Action = "ENTER_SHORT"
	ActionExitShort  Action = "EXIT_SHORT"
	ActionHold       Action = "HOLD"
)

// Position is the single open slot a simulation maintains.
type Position struct {
	Open       bool
	Direction  Direction
	EntryPrice float64
	EntryTime  time.Time
	Size       float64
}

// Trade is a closed round trip. Immutable once created.
type Trade struct {
	EntryTime  time.Time     `json:"entry_time"`
	ExitTime   time.Time     `json:"exit_time"`
	EntryPrice float64       `json:"entry_price"`
	ExitPrice  float64       `json:"exit_price"`
	Direction  Direction     `json:"direction"`
	Size       float64       `json:"size"`
	PnL        float64       `json:"pnl"`
	Holding    time.Duration `json:"holding"`
	ForceClose bool          `json:"force_close,omitempty"`
}

// Return is the trade's fractional return on entry price.
func (t Trade) Return() float64 {
	if t.EntryPrice == 0 {
		return 0
	}
	switch t.Direction {
	case Short:
		return (t.EntryPrice - t.ExitPrice) / t.EntryPrice
	default:
		return (t.ExitPrice - t.EntryPrice) / t.EntryPrice
	}
}

// PerformanceMetrics aggregates a trade sequence. Recomputed wholesale,
// never mutated in place.
type PerformanceMetrics struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	WinRate          float64 `json:"win_rate"`
	AvgWin           float64 `json:"avg_win"`
	AvgLoss          float64 `json:"avg_loss"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	TradeCount       int     `json:"trade_count"`
	FinalCapital     float64 `json:"final_capital"`
}

// RiskLevel scales how heavily drawdown is penalized when ranking
// strategies.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ParseRiskLevel validates a caller-supplied risk level string.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return RiskLevel(s), nil
	}
	return "", &ValidationError{Field: "risk_level", Reason: "must be one of low, medium, high"}
}

// Recommendation is the winning strategy for one evaluation request.
type Recommendation struct {
	Symbol     string             `json:"symbol"`
	StrategyID string             `json:"strategy"`
	Action     string             `json:"action"`
	Confidence float64            `json:"confidence"`
	Signals    []string           `json:"signals"`
	Sentiment  float64            `json:"sentiment"`
	Scores     map[string]float64 `json:"scores"`
}

// UniverseEntry is one instrument in a screening universe.
type UniverseEntry struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name" yaml:"name"`
	Sector string `json:"sector" yaml:"sector"`
}

// ScreenEntry is one scored instrument in a screen result.
type ScreenEntry struct {
	Symbol   string  `json:"symbol"`
	Sector   string  `json:"sector"`
	FitScore float64 `json:"fit_score"`
}

// ScreenResult is a ranked screen for one strategy/market pair.
type ScreenResult struct {
	StrategyID string        `json:"strategy"`
	Market     string        `json:"market"`
	Entries    []ScreenEntry `json:"entries"`
}

// BacktestResult bundles the trade log and derived metrics for one run.
type BacktestResult struct {
	Symbol      string             `json:"symbol"`
	StrategyID  string             `json:"strategy"`
	Period      string             `json:"period"`
	Performance PerformanceMetrics `json:"performance"`
	Trades      []Trade            `json:"trades"`
}
