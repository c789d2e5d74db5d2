package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ExitReason describes how a simulated trade left the market.
type ExitReason string

const (
	ExitReasonStopLoss   ExitReason = "STOP_LOSS"
	ExitReasonTakeProfit ExitReason = "TAKE_PROFIT"
	ExitReasonTimeout    ExitReason = "TIMEOUT"
	// ExitReasonNoExitFound means no entry bar existed for the label; the trade
	// is reported but excluded from aggregation.
	ExitReasonNoExitFound ExitReason = "NO_EXIT_FOUND"
)

// TradeResult is the realized outcome of replaying one label against the raw
// price path. Immutable once created.
type TradeResult struct {
	LabelID        string     `yaml:"label_id" json:"label_id" csv:"label_id"`
	Instrument     string     `yaml:"instrument" json:"instrument" csv:"instrument"`
	StrategyID     string     `yaml:"strategy_id" json:"strategy_id" csv:"strategy_id"`
	Side           Side       `yaml:"side" json:"side" csv:"side"`
	EntryTime      time.Time  `yaml:"entry_time" json:"entry_time" csv:"entry_time"`
	ExitTime       time.Time  `yaml:"exit_time" json:"exit_time" csv:"exit_time"`
	EntryPrice     float64    `yaml:"entry_price" json:"entry_price" csv:"entry_price"`
	ExitPrice      float64    `yaml:"exit_price" json:"exit_price" csv:"exit_price"`
	ExitReason     ExitReason `yaml:"exit_reason" json:"exit_reason" csv:"exit_reason"`
	GrossReturn    float64    `yaml:"gross_return" json:"gross_return" csv:"gross_return"`
	NetReturn      float64    `yaml:"net_return" json:"net_return" csv:"net_return"`
	PnLDollars     float64    `yaml:"pnl_dollars" json:"pnl_dollars" csv:"pnl_dollars"`
	HoldingSeconds float64    `yaml:"holding_seconds" json:"holding_seconds" csv:"holding_seconds"`
}

// IsWin reports whether the trade closed with positive net return.
func (t *TradeResult) IsWin() bool {
	return t.ExitReason != ExitReasonNoExitFound && t.NetReturn > 0
}

// StrategyMetrics is the per-strategy slice of the portfolio statistics.
type StrategyMetrics struct {
	TotalTrades   int     `yaml:"total_trades" json:"total_trades"`
	WinningTrades int     `yaml:"winning_trades" json:"winning_trades"`
	LosingTrades  int     `yaml:"losing_trades" json:"losing_trades"`
	WinRate       float64 `yaml:"win_rate" json:"win_rate"`
	TotalPnL      float64 `yaml:"total_pnl" json:"total_pnl"`
	AvgPnL        float64 `yaml:"avg_pnl" json:"avg_pnl"`
	AvgWinner     float64 `yaml:"avg_winner" json:"avg_winner"`
	AvgLoser      float64 `yaml:"avg_loser" json:"avg_loser"`
	// ProfitFactor is +Inf when there are zero losing trades.
	ProfitFactor float64 `yaml:"profit_factor" json:"profit_factor"`
}

// PortfolioMetrics aggregates all trade results of a backtest run. Recomputed
// wholesale each run, never mutated incrementally.
type PortfolioMetrics struct {
	TotalTrades   int     `yaml:"total_trades" json:"total_trades"`
	WinningTrades int     `yaml:"winning_trades" json:"winning_trades"`
	LosingTrades  int     `yaml:"losing_trades" json:"losing_trades"`
	NoExitFound   int     `yaml:"no_exit_found" json:"no_exit_found"`
	WinRate       float64 `yaml:"win_rate" json:"win_rate"`
	TotalPnL      float64 `yaml:"total_pnl" json:"total_pnl"`
	AvgPnL        float64 `yaml:"avg_pnl" json:"avg_pnl"`
	AvgWinner     float64 `yaml:"avg_winner" json:"avg_winner"`
	AvgLoser      float64 `yaml:"avg_loser" json:"avg_loser"`
	SharpeRatio   float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	MaxDrawdown   float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// ProfitFactor is +Inf when there are zero losing trades.
	ProfitFactor  float64 `yaml:"profit_factor" json:"profit_factor"`
	BuyAndHoldPnL float64 `yaml:"buy_and_hold_pnl" json:"buy_and_hold_pnl"`

	PerStrategy map[string]StrategyMetrics `yaml:"per_strategy" json:"per_strategy"`
}

// BacktestParameters records the cost model of a run inside the artifact.
type BacktestParameters struct {
	InitialCapital   float64 `yaml:"initial_capital" json:"initial_capital"`
	Commission       float64 `yaml:"commission" json:"commission"`
	Slippage         float64 `yaml:"slippage" json:"slippage"`
	PositionFraction float64 `yaml:"position_fraction" json:"position_fraction"`
	Tiebreak         string  `yaml:"tiebreak" json:"tiebreak"`
	BarDuration      string  `yaml:"bar_duration" json:"bar_duration"`
}

// BacktestArtifact is the structured result document written at the end of a
// run, and only on full completion.
type BacktestArtifact struct {
	ID              string             `yaml:"id" json:"id"`
	GeneratedAt     time.Time          `yaml:"generated_at" json:"generated_at"`
	Parameters      BacktestParameters `yaml:"parameters" json:"parameters"`
	BacktestSummary PortfolioMetrics   `yaml:"backtest_summary" json:"backtest_summary"`
	TradeResults    []TradeResult      `yaml:"trade_results" json:"trade_results"`
}

// WriteBacktestArtifact marshals the artifact to YAML and writes it to path.
func WriteBacktestArtifact(path string, artifact BacktestArtifact) error {
	data, err := yaml.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest artifact to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest artifact to file: %w", err)
	}

	return nil
}
