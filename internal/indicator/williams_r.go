package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-research/internal/rolling"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// WilliamsR represents Williams %R: the negated position of the close within
// the rolling high/low range, bounded in [-100, 0].
type WilliamsR struct {
	period int

	lows  *rolling.Extremum
	highs *rolling.Extremum
}

// NewWilliamsR creates a new Williams %R indicator with default configuration.
func NewWilliamsR() Indicator {
	w := &WilliamsR{
		period: 14, // Default period
		lows:   nil,
		highs:  nil,
	}
	w.reset()

	return w
}

// Name returns the name of the indicator.
func (w *WilliamsR) Name() types.IndicatorType {
	return types.IndicatorTypeWilliamsR
}

// Columns returns the feature columns this indicator produces.
func (w *WilliamsR) Columns() []string {
	return []string{types.FeatureWilliamsR}
}

// Config configures the indicator. Expected parameters: period (int).
func (w *WilliamsR) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	w.period = period
	w.reset()

	return nil
}

func (w *WilliamsR) reset() {
	w.lows = rolling.NewMin(w.period)
	w.highs = rolling.NewMax(w.period)
}

// Update implements the Indicator interface.
func (w *WilliamsR) Update(bar types.MarketData, out map[string]float64) {
	w.lows.Push(bar.Low)
	w.highs.Push(bar.High)

	if !w.lows.Full() {
		out[types.FeatureWilliamsR] = math.NaN()

		return
	}

	lowest := w.lows.Value()
	highest := w.highs.Value()

	if highest == lowest {
		out[types.FeatureWilliamsR] = -50

		return
	}

	out[types.FeatureWilliamsR] = -100 * (highest - bar.Close) / (highest - lowest)
}
