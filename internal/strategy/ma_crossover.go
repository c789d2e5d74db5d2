package strategy

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// StrategyIDMACrossover identifies signals from the moving-average crossover detector.
const StrategyIDMACrossover = "ma_crossover"

// crossState is the per-series confirmation state machine.
type crossState int

const (
	stateNoCross crossState = iota
	stateConfirmingBull
	stateConfirmingBear
)

// MACrossoverConfig parameterizes the crossover detector.
type MACrossoverConfig struct {
	// ConfirmationPeriods is how many bars the crossover ordering must hold
	// after the cross before a signal is emitted.
	ConfirmationPeriods int     `yaml:"confirmation_periods" json:"confirmation_periods" validate:"gt=0"`
	ATRMultiple         float64 `yaml:"atr_multiple" json:"atr_multiple" validate:"gt=0"`
	RiskReward          float64 `yaml:"risk_reward" json:"risk_reward" validate:"gt=0"`
}

// DefaultMACrossoverConfig returns the default crossover parameters.
func DefaultMACrossoverConfig() MACrossoverConfig {
	return MACrossoverConfig{
		ConfirmationPeriods: 3,
		ATRMultiple:         1.5,
		RiskReward:          2.0,
	}
}

// MACrossover detects EMA crossovers held through a confirmation window.
// A cross that reverses before the window completes is cancelled silently.
type MACrossover struct {
	config MACrossoverConfig
}

var configValidator = validator.New()

// NewMACrossover creates the crossover detector with the given configuration.
func NewMACrossover(config MACrossoverConfig) (Detector, error) {
	if err := configValidator.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDetectorConfigError, "invalid ma_crossover config", err)
	}

	return &MACrossover{config: config}, nil
}

// Name implements the Detector interface.
func (m *MACrossover) Name() string {
	return StrategyIDMACrossover
}

// Detect implements the Detector interface.
func (m *MACrossover) Detect(rows []types.FeatureRow) ([]types.Signal, error) {
	var signals []types.Signal

	state := stateNoCross
	held := 0

	prevFast := math.NaN()
	prevSlow := math.NaN()

	for i := range rows {
		row := &rows[i]

		if !row.Defined(types.FeatureEMAFast, types.FeatureEMASlow) {
			continue
		}

		fast := row.Feature(types.FeatureEMAFast)
		slow := row.Feature(types.FeatureEMASlow)

		if math.IsNaN(prevFast) {
			prevFast, prevSlow = fast, slow

			continue
		}

		switch state {
		case stateNoCross:
			if prevFast <= prevSlow && fast > slow {
				state = stateConfirmingBull
				held = 0
			} else if prevFast >= prevSlow && fast < slow {
				state = stateConfirmingBear
				held = 0
			}
		case stateConfirmingBull:
			if fast <= slow {
				// Reversal cancels the pending signal silently.
				state = stateNoCross

				break
			}

			held++
			if held >= m.config.ConfirmationPeriods {
				if signal, ok := m.emit(row, types.SideLong, fast, slow); ok {
					signals = append(signals, signal)
				}

				state = stateNoCross
			}
		case stateConfirmingBear:
			if fast >= slow {
				state = stateNoCross

				break
			}

			held++
			if held >= m.config.ConfirmationPeriods {
				if signal, ok := m.emit(row, types.SideShort, fast, slow); ok {
					signals = append(signals, signal)
				}

				state = stateNoCross
			}
		}

		prevFast, prevSlow = fast, slow
	}

	return signals, nil
}

// emit builds the signal at the confirming bar's close. Returns false when the
// ATR is still warming up; the pending cross is dropped rather than deferred.
func (m *MACrossover) emit(row *types.FeatureRow, side types.Side, fast, slow float64) (types.Signal, bool) {
	if !row.Defined(types.FeatureATR) {
		return types.Signal{}, false
	}

	atr := row.Feature(types.FeatureATR)
	if atr <= 0 {
		return types.Signal{}, false
	}

	entry := row.Close
	stop, target := StopAndTarget(entry, side, atr, m.config.ATRMultiple, m.config.RiskReward)

	if stop <= 0 || target <= 0 {
		return types.Signal{}, false
	}

	separation := math.Abs(fast-slow) / atr

	return types.Signal{
		Instrument: row.Instrument,
		Time:       row.Time,
		Side:       side,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: target,
		StrategyID: StrategyIDMACrossover,
		Confidence: clampConfidence(0.5 + separation/2),
		RiskReward: m.config.RiskReward,
		Metadata: map[string]float64{
			"ema_fast":   fast,
			"ema_slow":   slow,
			"separation": separation,
		},
	}, true
}
