package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-research/internal/rolling"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// BollingerBands represents the Bollinger Bands indicator: a rolling mean of
// the close with bands at +/- stdDevMultiplier rolling standard deviations.
type BollingerBands struct {
	period           int
	stdDevMultiplier float64

	variance *rolling.Variance
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	b := &BollingerBands{
		period:           20, // Default period
		stdDevMultiplier: 2,  // Default multiplier
		variance:         nil,
	}
	b.reset()

	return b
}

// Name returns the name of the indicator.
func (b *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Columns returns the feature columns this indicator produces.
func (b *BollingerBands) Columns() []string {
	return []string{types.FeatureBBMiddle, types.FeatureBBUpper, types.FeatureBBLower}
}

// Config configures the indicator. Expected parameters: period (int),
// optional stdDevMultiplier (float64).
func (b *BollingerBands) Config(params ...any) error {
	if len(params) < 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects at least 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if period <= 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be greater than 1, got %d", period)
	}

	b.period = period

	if len(params) >= 2 {
		multiplier, ok := params[1].(float64)
		if !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for stdDevMultiplier parameter, expected float64")
		}

		if multiplier <= 0 {
			return errors.Newf(errors.ErrCodeInvalidThreshold, "stdDevMultiplier must be positive, got %f", multiplier)
		}

		b.stdDevMultiplier = multiplier
	}

	b.reset()

	return nil
}

func (b *BollingerBands) reset() {
	b.variance = rolling.NewVariance(b.period)
}

// Update implements the Indicator interface.
func (b *BollingerBands) Update(bar types.MarketData, out map[string]float64) {
	b.variance.Push(bar.Close)

	if !b.variance.Full() {
		out[types.FeatureBBMiddle] = math.NaN()
		out[types.FeatureBBUpper] = math.NaN()
		out[types.FeatureBBLower] = math.NaN()

		return
	}

	mean := b.variance.Mean()
	std := b.variance.Std()

	out[types.FeatureBBMiddle] = mean
	out[types.FeatureBBUpper] = mean + b.stdDevMultiplier*std
	out[types.FeatureBBLower] = mean - b.stdDevMultiplier*std
}
