package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-research/internal/rolling"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// cciScale is the conventional 0.015 Lambert constant.
const cciScale = 0.015

// CCI represents the Commodity Channel Index:
// (typicalPrice - SMA(typicalPrice)) / (0.015 * meanDeviation).
type CCI struct {
	period int

	window *rolling.Window
}

// NewCCI creates a new CCI indicator with default configuration.
func NewCCI() Indicator {
	c := &CCI{
		period: 20, // Default period
		window: nil,
	}
	c.reset()

	return c
}

// Name returns the name of the indicator.
func (c *CCI) Name() types.IndicatorType {
	return types.IndicatorTypeCCI
}

// Columns returns the feature columns this indicator produces.
func (c *CCI) Columns() []string {
	return []string{types.FeatureCCI}
}

// Config configures the CCI indicator. Expected parameters: period (int).
func (c *CCI) Config(params ...any) error {
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

	c.period = period
	c.reset()

	return nil
}

func (c *CCI) reset() {
	c.window = rolling.NewWindow(c.period)
}

// Update implements the Indicator interface.
// The mean absolute deviation has no incremental form, so this scans the
// window; everything else in the engine stays O(1) per bar.
func (c *CCI) Update(bar types.MarketData, out map[string]float64) {
	tp := bar.TypicalPrice()
	c.window.Push(tp)

	if !c.window.Full() {
		out[types.FeatureCCI] = math.NaN()

		return
	}

	mean := c.window.Mean()

	meanDeviation := 0.0
	for i := 0; i < c.window.Count(); i++ {
		meanDeviation += math.Abs(c.window.At(i) - mean)
	}

	meanDeviation /= float64(c.window.Count())

	if meanDeviation == 0 {
		out[types.FeatureCCI] = 0

		return
	}

	out[types.FeatureCCI] = (tp - mean) / (cciScale * meanDeviation)
}
