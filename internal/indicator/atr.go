package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-research/internal/rolling"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// ATR represents the Average True Range indicator: the rolling mean of
// max(high-low, |high-prevClose|, |low-prevClose|).
type ATR struct {
	period int

	window    *rolling.Window
	prevClose float64
	hasPrev   bool
}

// NewATR creates a new ATR indicator with default configuration.
func NewATR() Indicator {
	a := &ATR{
		period:    14, // Default period
		window:    nil,
		prevClose: 0,
		hasPrev:   false,
	}
	a.reset()

	return a
}

// Name returns the name of the indicator.
func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// Columns returns the feature columns this indicator produces.
func (a *ATR) Columns() []string {
	return []string{types.FeatureATR}
}

// Config configures the ATR indicator. Expected parameters: period (int).
func (a *ATR) Config(params ...any) error {
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

	a.period = period
	a.reset()

	return nil
}

func (a *ATR) reset() {
	a.window = rolling.NewWindow(a.period)
	a.prevClose = 0
	a.hasPrev = false
}

// Update implements the Indicator interface.
func (a *ATR) Update(bar types.MarketData, out map[string]float64) {
	prev := bar.Close
	if a.hasPrev {
		prev = a.prevClose
	}

	a.window.Push(bar.TrueRange(prev))
	a.prevClose = bar.Close
	a.hasPrev = true

	if !a.window.Full() {
		out[types.FeatureATR] = math.NaN()

		return
	}

	out[types.FeatureATR] = a.window.Mean()
}
