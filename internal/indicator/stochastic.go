package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-research/internal/rolling"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// Stochastic represents the Stochastic Oscillator: %K locates the close within
// the rolling high/low range, %D is a kPeriod-independent SMA smoothing of %K.
type Stochastic struct {
	kPeriod int
	dPeriod int

	lows   *rolling.Extremum
	highs  *rolling.Extremum
	dSmooth *rolling.Window
}

// NewStochastic creates a new Stochastic Oscillator with default configuration.
func NewStochastic() Indicator {
	s := &Stochastic{
		kPeriod: 14, // Default %K period
		dPeriod: 3,  // Default %D period
		lows:    nil,
		highs:   nil,
		dSmooth: nil,
	}
	s.reset()

	return s
}

// Name returns the name of the indicator.
func (s *Stochastic) Name() types.IndicatorType {
	return types.IndicatorTypeStochastic
}

// Columns returns the feature columns this indicator produces.
func (s *Stochastic) Columns() []string {
	return []string{types.FeatureStochK, types.FeatureStochD}
}

// Config configures the indicator. Expected parameters: kPeriod (int), dPeriod (int).
func (s *Stochastic) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: kPeriod (int), dPeriod (int)")
	}

	kPeriod, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for kPeriod parameter, expected int")
	}

	dPeriod, ok := params[1].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for dPeriod parameter, expected int")
	}

	if kPeriod <= 0 || dPeriod <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "periods must be positive integers, got k=%d d=%d", kPeriod, dPeriod)
	}

	s.kPeriod = kPeriod
	s.dPeriod = dPeriod
	s.reset()

	return nil
}

func (s *Stochastic) reset() {
	s.lows = rolling.NewMin(s.kPeriod)
	s.highs = rolling.NewMax(s.kPeriod)
	s.dSmooth = rolling.NewWindow(s.dPeriod)
}

// Update implements the Indicator interface.
func (s *Stochastic) Update(bar types.MarketData, out map[string]float64) {
	s.lows.Push(bar.Low)
	s.highs.Push(bar.High)

	if !s.lows.Full() {
		out[types.FeatureStochK] = math.NaN()
		out[types.FeatureStochD] = math.NaN()

		return
	}

	lowest := s.lows.Value()
	highest := s.highs.Value()

	k := 50.0 // Flat range: close sits in the middle by convention
	if highest > lowest {
		k = 100 * (bar.Close - lowest) / (highest - lowest)
	}

	out[types.FeatureStochK] = k

	s.dSmooth.Push(k)

	if !s.dSmooth.Full() {
		out[types.FeatureStochD] = math.NaN()

		return
	}

	out[types.FeatureStochD] = s.dSmooth.Mean()
}
