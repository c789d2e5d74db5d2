package backtest

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-research/internal/logger"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Engine replays a label table against raw bar series. Each label simulates
// independently, so the engine fans the work out over a bounded worker pool
// and reassembles results in label order.
type Engine struct {
	config SimulatorConfig
	log    *logger.Logger
	// progress enables the interactive progress bar; off in tests.
	progress bool
}

// NewEngine creates a backtest engine with the given cost model.
func NewEngine(config SimulatorConfig, log *logger.Logger) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		config:   config,
		log:      log,
		progress: false,
	}, nil
}

// SetProgress toggles the interactive progress bar.
func (e *Engine) SetProgress(enabled bool) {
	e.progress = enabled
}

// Run simulates every non-negative label and aggregates the outcomes. The
// context is checked between labels so long runs can be cancelled; on
// cancellation no partial result is returned.
func (e *Engine) Run(ctx context.Context, bars map[string][]types.MarketData, labels []types.Label) ([]types.TradeResult, types.PortfolioMetrics, error) {
	tradeable := make([]*types.Label, 0, len(labels))

	for i := range labels {
		if labels[i].IsNegative {
			continue
		}

		tradeable = append(tradeable, &labels[i])
	}

	results := make([]types.TradeResult, len(tradeable))

	var bar *progressbar.ProgressBar
	if e.progress {
		bar = progressbar.Default(int64(len(tradeable)), "simulating labels")
	}

	workers := runtime.NumCPU()
	if workers > len(tradeable) {
		workers = len(tradeable)
	}

	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup

	jobs := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range jobs {
				label := tradeable[i]
				results[i] = Simulate(e.config, bars[label.Instrument], label)

				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}()
	}

	var cancelled error

	for i := range tradeable {
		if err := ctx.Err(); err != nil {
			cancelled = errors.Wrap(errors.ErrCodeBacktestCancelled, "backtest cancelled", err)

			break
		}

		jobs <- i
	}

	close(jobs)
	wg.Wait()

	if cancelled != nil {
		return nil, types.PortfolioMetrics{}, cancelled
	}

	noExit := 0

	for i := range results {
		if results[i].ExitReason == types.ExitReasonNoExitFound {
			noExit++

			e.log.Warn("no entry bar for label, excluded from aggregation",
				zap.String("label_id", results[i].LabelID),
				zap.String("instrument", results[i].Instrument),
			)
		}
	}

	metrics := ComputeMetrics(results)
	metrics.BuyAndHoldPnL = BuyAndHoldPnL(e.config, bars)

	e.log.Info("backtest complete",
		zap.Int("labels", len(tradeable)),
		zap.Int("trades", metrics.TotalTrades),
		zap.Int("no_exit_found", noExit),
		zap.Float64("win_rate", metrics.WinRate),
		zap.Float64("total_pnl", metrics.TotalPnL),
	)

	return results, metrics, nil
}

// BuildArtifact assembles the result document for a completed run.
func (e *Engine) BuildArtifact(results []types.TradeResult, metrics types.PortfolioMetrics) types.BacktestArtifact {
	return types.BacktestArtifact{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Parameters: types.BacktestParameters{
			InitialCapital:   e.config.InitialCapital,
			Commission:       e.config.Commission,
			Slippage:         e.config.Slippage,
			PositionFraction: e.config.PositionFraction,
			Tiebreak:         string(e.config.Tiebreak),
			BarDuration:      e.config.BarDuration.String(),
		},
		BacktestSummary: metrics,
		TradeResults:    results,
	}
}
