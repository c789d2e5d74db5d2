package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-research/internal/rolling"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// MACD represents the Moving Average Convergence Divergence indicator:
// EMA(fast) - EMA(slow), a signal line EMA of the MACD, and their difference
// as the histogram.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int

	fast   *rolling.EMAState
	slow   *rolling.EMAState
	signal *rolling.EMAState
}

// NewMACD creates a new MACD indicator with default configuration.
func NewMACD() Indicator {
	m := &MACD{
		fastPeriod:   12, // Default fast period
		slowPeriod:   26, // Default slow period
		signalPeriod: 9,  // Default signal period
		fast:         nil,
		slow:         nil,
		signal:       nil,
	}
	m.reset()

	return m
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Columns returns the feature columns this indicator produces.
func (m *MACD) Columns() []string {
	return []string{types.FeatureMACD, types.FeatureMACDSignal, types.FeatureMACDHist}
}

// Config configures the MACD indicator. Expected parameters: fastPeriod (int),
// slowPeriod (int), signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int)")
	}

	periods := make([]int, 3)

	for i, p := range params {
		v, ok := p.(int)
		if !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
		}

		if v <= 0 {
			return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", v)
		}

		periods[i] = v
	}

	if periods[0] >= periods[1] {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "fast period must be shorter than slow period, got fast=%d slow=%d", periods[0], periods[1])
	}

	m.fastPeriod = periods[0]
	m.slowPeriod = periods[1]
	m.signalPeriod = periods[2]
	m.reset()

	return nil
}

func (m *MACD) reset() {
	m.fast = rolling.NewEMA(m.fastPeriod)
	m.slow = rolling.NewEMA(m.slowPeriod)
	m.signal = rolling.NewEMA(m.signalPeriod)
}

// Update implements the Indicator interface.
func (m *MACD) Update(bar types.MarketData, out map[string]float64) {
	fast := m.fast.Push(bar.Close)
	slow := m.slow.Push(bar.Close)

	if math.IsNaN(fast) || math.IsNaN(slow) {
		out[types.FeatureMACD] = math.NaN()
		out[types.FeatureMACDSignal] = math.NaN()
		out[types.FeatureMACDHist] = math.NaN()

		return
	}

	macd := fast - slow
	signal := m.signal.Push(macd)

	out[types.FeatureMACD] = macd
	out[types.FeatureMACDSignal] = signal

	if math.IsNaN(signal) {
		out[types.FeatureMACDHist] = math.NaN()
	} else {
		out[types.FeatureMACDHist] = macd - signal
	}
}
