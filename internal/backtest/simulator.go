// Package backtest replays labels against raw price paths and aggregates the
// realized outcomes into portfolio metrics.
package backtest

import (
	"sort"
	"time"

	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// TiebreakPolicy resolves bars where both the stop and the target are touched.
// Intrabar ordering is unknowable from OHLC data, so this is an explicit
// policy, not an inference.
type TiebreakPolicy string

const (
	// TiebreakStopLoss is the conservative default: a contested bar loses.
	TiebreakStopLoss TiebreakPolicy = "stop_loss"
	// TiebreakTakeProfit resolves contested bars in the trade's favor.
	TiebreakTakeProfit TiebreakPolicy = "take_profit"
)

// SimulatorConfig is the cost and execution model of a run.
type SimulatorConfig struct {
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital" validate:"gt=0"`
	// Commission is the per-leg transaction cost as a fraction of notional;
	// both legs are charged.
	Commission float64 `yaml:"commission" json:"commission" validate:"gte=0"`
	// Slippage is the assumed adverse move applied to the nominal entry.
	Slippage float64 `yaml:"slippage" json:"slippage" validate:"gte=0"`
	// PositionFraction sizes every trade as a fixed fraction of capital.
	PositionFraction float64        `yaml:"position_fraction" json:"position_fraction" validate:"gt=0,lte=1"`
	BarDuration      time.Duration  `yaml:"bar_duration" json:"bar_duration" validate:"gt=0"`
	Tiebreak         TiebreakPolicy `yaml:"tiebreak" json:"tiebreak" validate:"oneof=stop_loss take_profit"`
}

// DefaultSimulatorConfig returns the default cost model.
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		InitialCapital:   100_000,
		Commission:       0.001,
		Slippage:         0,
		PositionFraction: 0.02,
		BarDuration:      time.Minute,
		Tiebreak:         TiebreakStopLoss,
	}
}

// Validate checks the config.
func (c *SimulatorConfig) Validate() error {
	if c.InitialCapital <= 0 || c.PositionFraction <= 0 || c.PositionFraction > 1 {
		return errors.Newf(errors.ErrCodeBacktestConfigError,
			"invalid sizing: capital=%f fraction=%f", c.InitialCapital, c.PositionFraction)
	}

	if c.Commission < 0 || c.Slippage < 0 {
		return errors.Newf(errors.ErrCodeBacktestConfigError,
			"costs must be non-negative: commission=%f slippage=%f", c.Commission, c.Slippage)
	}

	if c.BarDuration <= 0 {
		return errors.Newf(errors.ErrCodeBacktestConfigError, "bar duration must be positive, got %s", c.BarDuration)
	}

	if c.Tiebreak != TiebreakStopLoss && c.Tiebreak != TiebreakTakeProfit {
		return errors.Newf(errors.ErrCodeBacktestConfigError, "unknown tiebreak policy %q", c.Tiebreak)
	}

	return nil
}

// Simulate replays one label against its instrument's raw bar series and
// returns the realized trade result. Bars must be sorted ascending by time.
//
// The first bar touching the stop or the target decides the exit; a bar
// touching both resolves by the configured tiebreak. When neither level is
// touched before the horizon expires, the trade times out at the horizon
// bar's close.
func Simulate(config SimulatorConfig, bars []types.MarketData, label *types.Label) types.TradeResult {
	result := types.TradeResult{
		LabelID:    label.ID,
		Instrument: label.Instrument,
		StrategyID: label.StrategyID,
		Side:       label.Side,
		ExitReason: types.ExitReasonNoExitFound,
	}

	entryIdx := sort.Search(len(bars), func(i int) bool {
		return !bars[i].Time.Before(label.Time)
	})
	if entryIdx == len(bars) {
		// Label timestamp beyond the end of available bars.
		return result
	}

	side := float64(label.Side)
	entry := label.EntryPrice * (1 + side*config.Slippage)

	horizonBars := int(time.Duration(label.HorizonMinutes) * time.Minute / config.BarDuration)
	if horizonBars < 1 {
		horizonBars = 1
	}

	lastIdx := entryIdx + horizonBars
	if lastIdx > len(bars)-1 {
		lastIdx = len(bars) - 1
	}

	exitPrice := bars[lastIdx].Close
	exitTime := bars[lastIdx].Time
	exitReason := types.ExitReasonTimeout

scan:
	for i := entryIdx; i <= lastIdx; i++ {
		bar := &bars[i]

		var stopHit, targetHit bool

		if label.Side == types.SideLong {
			stopHit = bar.Low <= label.StopLoss
			targetHit = bar.High >= label.TakeProfit
		} else {
			stopHit = bar.High >= label.StopLoss
			targetHit = bar.Low <= label.TakeProfit
		}

		switch {
		case stopHit && targetHit:
			if config.Tiebreak == TiebreakTakeProfit {
				exitPrice = label.TakeProfit
				exitReason = types.ExitReasonTakeProfit
			} else {
				exitPrice = label.StopLoss
				exitReason = types.ExitReasonStopLoss
			}

			exitTime = bar.Time

			break scan
		case stopHit:
			exitPrice = label.StopLoss
			exitReason = types.ExitReasonStopLoss
			exitTime = bar.Time

			break scan
		case targetHit:
			exitPrice = label.TakeProfit
			exitReason = types.ExitReasonTakeProfit
			exitTime = bar.Time

			break scan
		}
	}

	gross := side * (exitPrice - entry) / entry
	net := gross - 2*config.Commission
	positionSize := config.PositionFraction * config.InitialCapital

	result.EntryTime = bars[entryIdx].Time
	result.ExitTime = exitTime
	result.EntryPrice = entry
	result.ExitPrice = exitPrice
	result.ExitReason = exitReason
	result.GrossReturn = gross
	result.NetReturn = net
	result.PnLDollars = positionSize * net
	result.HoldingSeconds = exitTime.Sub(bars[entryIdx].Time).Seconds()

	return result
}
