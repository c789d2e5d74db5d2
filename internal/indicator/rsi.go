package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-research/internal/rolling"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// RSI represents the Relative Strength Index indicator. The relative strength
// is the ratio of the rolling averages of positive and negative close deltas
// over the period, converted via 100 - 100/(1+RS).
type RSI struct {
	period int

	gains     *rolling.Window
	losses    *rolling.Window
	prevClose float64
	hasPrev   bool
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	r := &RSI{
		period:    14, // Default period
		gains:     nil,
		losses:    nil,
		prevClose: 0,
		hasPrev:   false,
	}
	r.reset()

	return r
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Columns returns the feature columns this indicator produces.
func (r *RSI) Columns() []string {
	return []string{types.FeatureRSI}
}

// Config configures the RSI indicator. Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
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

	r.period = period
	r.reset()

	return nil
}

func (r *RSI) reset() {
	r.gains = rolling.NewWindow(r.period)
	r.losses = rolling.NewWindow(r.period)
	r.prevClose = 0
	r.hasPrev = false
}

// Update implements the Indicator interface.
func (r *RSI) Update(bar types.MarketData, out map[string]float64) {
	if !r.hasPrev {
		r.prevClose = bar.Close
		r.hasPrev = true
		out[types.FeatureRSI] = math.NaN()

		return
	}

	change := bar.Close - r.prevClose
	r.prevClose = bar.Close

	if change > 0 {
		r.gains.Push(change)
		r.losses.Push(0)
	} else {
		r.gains.Push(0)
		r.losses.Push(-change)
	}

	if !r.gains.Full() {
		out[types.FeatureRSI] = math.NaN()

		return
	}

	avgLoss := r.losses.Mean()
	if avgLoss == 0 {
		// Perfect uptrend over the window.
		out[types.FeatureRSI] = 100

		return
	}

	rs := r.gains.Mean() / avgLoss
	out[types.FeatureRSI] = 100 - (100 / (1 + rs))
}
