package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-research/internal/rolling"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// MFI represents the Money Flow Index: RSI-style conversion of the ratio of
// positive to negative money flow (typicalPrice * volume) over the period.
type MFI struct {
	period int

	positive *rolling.Window
	negative *rolling.Window
	prevTP   float64
	hasPrev  bool
}

// NewMFI creates a new MFI indicator with default configuration.
func NewMFI() Indicator {
	m := &MFI{
		period:   14, // Default period
		positive: nil,
		negative: nil,
		prevTP:   0,
		hasPrev:  false,
	}
	m.reset()

	return m
}

// Name returns the name of the indicator.
func (m *MFI) Name() types.IndicatorType {
	return types.IndicatorTypeMFI
}

// Columns returns the feature columns this indicator produces.
func (m *MFI) Columns() []string {
	return []string{types.FeatureMFI}
}

// Config configures the MFI indicator. Expected parameters: period (int).
func (m *MFI) Config(params ...any) error {
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

	m.period = period
	m.reset()

	return nil
}

func (m *MFI) reset() {
	m.positive = rolling.NewWindow(m.period)
	m.negative = rolling.NewWindow(m.period)
	m.prevTP = 0
	m.hasPrev = false
}

// Update implements the Indicator interface.
func (m *MFI) Update(bar types.MarketData, out map[string]float64) {
	tp := bar.TypicalPrice()

	if !m.hasPrev {
		m.prevTP = tp
		m.hasPrev = true
		out[types.FeatureMFI] = math.NaN()

		return
	}

	flow := tp * bar.Volume

	switch {
	case tp > m.prevTP:
		m.positive.Push(flow)
		m.negative.Push(0)
	case tp < m.prevTP:
		m.positive.Push(0)
		m.negative.Push(flow)
	default:
		m.positive.Push(0)
		m.negative.Push(0)
	}

	m.prevTP = tp

	if !m.positive.Full() {
		out[types.FeatureMFI] = math.NaN()

		return
	}

	negativeFlow := m.negative.Sum()
	if negativeFlow == 0 {
		out[types.FeatureMFI] = 100

		return
	}

	ratio := m.positive.Sum() / negativeFlow
	out[types.FeatureMFI] = 100 - (100 / (1 + ratio))
}
