package strategy

import (
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// StrategyIDOrderBlock identifies signals from the order-block tap detector.
const StrategyIDOrderBlock = "order_block"

// OrderBlockConfig parameterizes the order-block detector.
type OrderBlockConfig struct {
	// Strength is the number of bars over which the impulse move away from the
	// block is measured.
	Strength int `yaml:"strength" json:"strength" validate:"gt=0"`
	// ThreshPct is the minimum fractional impulse move that qualifies a block.
	ThreshPct float64 `yaml:"thresh_pct" json:"thresh_pct" validate:"gt=0,lt=1"`
	// ScanWindow bounds how many bars after the impulse a tap is awaited.
	ScanWindow  int     `yaml:"scan_window" json:"scan_window" validate:"gt=0"`
	ATRMultiple float64 `yaml:"atr_multiple" json:"atr_multiple" validate:"gt=0"`
	RiskReward  float64 `yaml:"risk_reward" json:"risk_reward" validate:"gt=0"`
}

// DefaultOrderBlockConfig returns the default order-block parameters.
func DefaultOrderBlockConfig() OrderBlockConfig {
	return OrderBlockConfig{
		Strength:    3,
		ThreshPct:   0.015,
		ScanWindow:  60,
		ATRMultiple: 1.5,
		RiskReward:  2.0,
	}
}

// orderBlockZone is a discovered supply or demand zone awaiting its tap.
type orderBlockZone struct {
	discoveredAt int // index of the block candle
	activeFrom   int // first index eligible to tap (after the impulse)
	expiresAt    int // last index eligible to tap
	low          float64
	high         float64
	side         types.Side
	movePct      float64
}

// OrderBlock detects candles whose body direction opposes a subsequent
// impulse move, treats their range as a supply/demand zone, and emits a signal
// at the first later bar that taps back into the zone.
type OrderBlock struct {
	config OrderBlockConfig
}

// NewOrderBlock creates the order-block detector with the given configuration.
func NewOrderBlock(config OrderBlockConfig) (Detector, error) {
	if err := configValidator.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDetectorConfigError, "invalid order_block config", err)
	}

	return &OrderBlock{config: config}, nil
}

// Name implements the Detector interface.
func (o *OrderBlock) Name() string {
	return StrategyIDOrderBlock
}

// Detect implements the Detector interface.
func (o *OrderBlock) Detect(rows []types.FeatureRow) ([]types.Signal, error) {
	var (
		signals []types.Signal
		zones   []orderBlockZone
	)

	for i := range rows {
		row := &rows[i]

		// Phase 2 first: the earliest-discovered zone wins a contested tap,
		// and a bar taps at most one zone.
		for z := range zones {
			zone := &zones[z]
			if zone.expiresAt < 0 || i < zone.activeFrom || i > zone.expiresAt {
				continue
			}

			if row.Low <= zone.high && row.High >= zone.low {
				if signal, ok := o.emit(row, zone); ok {
					signals = append(signals, signal)
				}

				zone.expiresAt = -1 // consumed

				break
			}
		}

		// Drop zones that can no longer tap.
		zones = pruneZones(zones, i)

		// Phase 1: does the candle `strength` bars back qualify as a block?
		if zone, ok := o.discover(rows, i); ok {
			zones = append(zones, zone)
		}
	}

	return signals, nil
}

// discover checks whether the candle at i-strength opposes the move completed
// at bar i and exceeds the impulse threshold.
func (o *OrderBlock) discover(rows []types.FeatureRow, i int) (orderBlockZone, bool) {
	blockIdx := i - o.config.Strength
	if blockIdx < 0 {
		return orderBlockZone{}, false
	}

	block := &rows[blockIdx]
	if block.Close == block.Open {
		return orderBlockZone{}, false
	}

	movePct := (rows[i].Close - block.Close) / block.Close

	bearishBody := block.Close < block.Open

	var side types.Side

	switch {
	case bearishBody && movePct > o.config.ThreshPct:
		// Down candle swept before an up impulse: demand zone, buy the tap.
		side = types.SideLong
	case !bearishBody && movePct < -o.config.ThreshPct:
		// Up candle swept before a down impulse: supply zone, sell the tap.
		side = types.SideShort
	default:
		return orderBlockZone{}, false
	}

	return orderBlockZone{
		discoveredAt: blockIdx,
		activeFrom:   i + 1,
		expiresAt:    i + o.config.ScanWindow,
		low:          block.Low,
		high:         block.High,
		side:         side,
		movePct:      movePct,
	}, true
}

// emit builds the signal at the tap bar's open. Returns false while the ATR is
// warming up; the zone stays consumed either way.
func (o *OrderBlock) emit(row *types.FeatureRow, zone *orderBlockZone) (types.Signal, bool) {
	if !row.Defined(types.FeatureATR) {
		return types.Signal{}, false
	}

	atr := row.Feature(types.FeatureATR)
	if atr <= 0 {
		return types.Signal{}, false
	}

	entry := row.Open
	stop, target := StopAndTarget(entry, zone.side, atr, o.config.ATRMultiple, o.config.RiskReward)

	if stop <= 0 || target <= 0 {
		return types.Signal{}, false
	}

	movePct := zone.movePct
	if movePct < 0 {
		movePct = -movePct
	}

	return types.Signal{
		Instrument: row.Instrument,
		Time:       row.Time,
		Side:       zone.side,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: target,
		StrategyID: StrategyIDOrderBlock,
		Confidence: clampConfidence(movePct / (2 * o.config.ThreshPct)),
		RiskReward: o.config.RiskReward,
		Metadata: map[string]float64{
			"zone_low":  zone.low,
			"zone_high": zone.high,
			"move_pct":  zone.movePct,
		},
	}, true
}

// pruneZones removes consumed and expired zones, preserving discovery order.
func pruneZones(zones []orderBlockZone, current int) []orderBlockZone {
	kept := zones[:0]

	for _, zone := range zones {
		if zone.expiresAt >= 0 && zone.expiresAt >= current {
			kept = append(kept, zone)
		}
	}

	return kept
}
