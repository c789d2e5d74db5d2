package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-research/internal/rolling"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// VWAP represents the rolling Volume-Weighted Average Price:
// sum(typicalPrice * volume) / sum(volume) over the window.
type VWAP struct {
	period int

	priceVolume *rolling.Window
	volume      *rolling.Window
}

// NewVWAP creates a new VWAP indicator with default configuration.
func NewVWAP() Indicator {
	v := &VWAP{
		period:      60, // Default window
		priceVolume: nil,
		volume:      nil,
	}
	v.reset()

	return v
}

// Name returns the name of the indicator.
func (v *VWAP) Name() types.IndicatorType {
	return types.IndicatorTypeVWAP
}

// Columns returns the feature columns this indicator produces.
func (v *VWAP) Columns() []string {
	return []string{types.FeatureVWAP}
}

// Config configures the VWAP indicator. Expected parameters: period (int).
func (v *VWAP) Config(params ...any) error {
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

	v.period = period
	v.reset()

	return nil
}

func (v *VWAP) reset() {
	v.priceVolume = rolling.NewWindow(v.period)
	v.volume = rolling.NewWindow(v.period)
}

// Update implements the Indicator interface.
func (v *VWAP) Update(bar types.MarketData, out map[string]float64) {
	v.priceVolume.Push(bar.TypicalPrice() * bar.Volume)
	v.volume.Push(bar.Volume)

	if !v.priceVolume.Full() || v.volume.Sum() == 0 {
		out[types.FeatureVWAP] = math.NaN()

		return
	}

	out[types.FeatureVWAP] = v.priceVolume.Sum() / v.volume.Sum()
}
