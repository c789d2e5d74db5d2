package strategy

import (
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// StrategyIDVWAPReversion identifies signals from the VWAP mean-reversion detector.
const StrategyIDVWAPReversion = "vwap_reversion"

// VWAPReversionConfig parameterizes the VWAP reversion detector.
type VWAPReversionConfig struct {
	// BandPct is the fractional distance from VWAP the close must exceed.
	BandPct float64 `yaml:"band_pct" json:"band_pct" validate:"gt=0,lt=1"`
	// OversoldThreshold gates longs at RSI < threshold and shorts at
	// RSI > 100 - threshold.
	OversoldThreshold float64 `yaml:"oversold_threshold" json:"oversold_threshold" validate:"gt=0,lt=50"`
	ATRMultiple       float64 `yaml:"atr_multiple" json:"atr_multiple" validate:"gt=0"`
	RiskReward        float64 `yaml:"risk_reward" json:"risk_reward" validate:"gt=0"`
}

// DefaultVWAPReversionConfig returns the default reversion parameters.
func DefaultVWAPReversionConfig() VWAPReversionConfig {
	return VWAPReversionConfig{
		BandPct:           0.01,
		OversoldThreshold: 35,
		ATRMultiple:       1.5,
		RiskReward:        2.0,
	}
}

// VWAPReversion is the stateless per-bar mean-reversion rule: fade closes that
// stretch beyond the VWAP band while the RSI confirms the extreme.
type VWAPReversion struct {
	config VWAPReversionConfig
}

// NewVWAPReversion creates the reversion detector with the given configuration.
func NewVWAPReversion(config VWAPReversionConfig) (Detector, error) {
	if err := configValidator.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDetectorConfigError, "invalid vwap_reversion config", err)
	}

	return &VWAPReversion{config: config}, nil
}

// Name implements the Detector interface.
func (v *VWAPReversion) Name() string {
	return StrategyIDVWAPReversion
}

// Detect implements the Detector interface.
func (v *VWAPReversion) Detect(rows []types.FeatureRow) ([]types.Signal, error) {
	var signals []types.Signal

	for i := range rows {
		row := &rows[i]

		if !row.Defined(types.FeatureVWAP, types.FeatureRSI, types.FeatureATR) {
			continue
		}

		vwap := row.Feature(types.FeatureVWAP)
		rsi := row.Feature(types.FeatureRSI)
		atr := row.Feature(types.FeatureATR)

		if atr <= 0 || vwap <= 0 {
			continue
		}

		var side types.Side

		switch {
		case row.Close < vwap*(1-v.config.BandPct) && rsi < v.config.OversoldThreshold:
			side = types.SideLong
		case row.Close > vwap*(1+v.config.BandPct) && rsi > 100-v.config.OversoldThreshold:
			side = types.SideShort
		default:
			continue
		}

		entry := row.Close
		stop, target := StopAndTarget(entry, side, atr, v.config.ATRMultiple, v.config.RiskReward)

		if stop <= 0 || target <= 0 {
			continue
		}

		deviation := (row.Close - vwap) / vwap
		if deviation < 0 {
			deviation = -deviation
		}

		signals = append(signals, types.Signal{
			Instrument: row.Instrument,
			Time:       row.Time,
			Side:       side,
			EntryPrice: entry,
			StopLoss:   stop,
			TakeProfit: target,
			StrategyID: StrategyIDVWAPReversion,
			Confidence: clampConfidence(deviation / (2 * v.config.BandPct)),
			RiskReward: v.config.RiskReward,
			Metadata: map[string]float64{
				"vwap":      vwap,
				"rsi":       rsi,
				"deviation": deviation,
			},
		})
	}

	return signals, nil
}
