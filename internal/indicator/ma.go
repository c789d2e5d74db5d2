package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-research/internal/rolling"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// MovingAverages produces the fast/slow EMA pair consumed by the crossover
// detector plus a simple moving average of the close.
type MovingAverages struct {
	fastPeriod int
	slowPeriod int
	smaPeriod  int

	fast *rolling.EMAState
	slow *rolling.EMAState
	sma  *rolling.Window
}

// NewMovingAverages creates the indicator with default configuration.
func NewMovingAverages() Indicator {
	m := &MovingAverages{
		fastPeriod: 9,  // Default fast period
		slowPeriod: 21, // Default slow period
		smaPeriod:  20, // Default SMA period
		fast:       nil,
		slow:       nil,
		sma:        nil,
	}
	m.reset()

	return m
}

// Name returns the name of the indicator.
func (m *MovingAverages) Name() types.IndicatorType {
	return types.IndicatorTypeMovingAverages
}

// Columns returns the feature columns this indicator produces.
func (m *MovingAverages) Columns() []string {
	return []string{types.FeatureEMAFast, types.FeatureEMASlow, types.FeatureSMA}
}

// Config configures the indicator. Expected parameters: fastPeriod (int),
// slowPeriod (int), optional smaPeriod (int).
func (m *MovingAverages) Config(params ...any) error {
	if len(params) < 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects at least 2 parameters: fastPeriod (int), slowPeriod (int)")
	}

	fast, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for fastPeriod parameter, expected int")
	}

	slow, ok := params[1].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for slowPeriod parameter, expected int")
	}

	if fast <= 0 || slow <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "periods must be positive integers, got fast=%d slow=%d", fast, slow)
	}

	if fast >= slow {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "fast period must be shorter than slow period, got fast=%d slow=%d", fast, slow)
	}

	m.fastPeriod = fast
	m.slowPeriod = slow

	if len(params) >= 3 {
		sma, ok := params[2].(int)
		if !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for smaPeriod parameter, expected int")
		}

		if sma <= 0 {
			return errors.Newf(errors.ErrCodeInvalidPeriod, "smaPeriod must be a positive integer, got %d", sma)
		}

		m.smaPeriod = sma
	}

	m.reset()

	return nil
}

func (m *MovingAverages) reset() {
	m.fast = rolling.NewEMA(m.fastPeriod)
	m.slow = rolling.NewEMA(m.slowPeriod)
	m.sma = rolling.NewWindow(m.smaPeriod)
}

// Update implements the Indicator interface.
func (m *MovingAverages) Update(bar types.MarketData, out map[string]float64) {
	out[types.FeatureEMAFast] = m.fast.Push(bar.Close)
	out[types.FeatureEMASlow] = m.slow.Push(bar.Close)

	m.sma.Push(bar.Close)

	if m.sma.Full() {
		out[types.FeatureSMA] = m.sma.Mean()
	} else {
		out[types.FeatureSMA] = math.NaN()
	}
}
