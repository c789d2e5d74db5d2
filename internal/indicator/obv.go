package indicator

import (
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// OBV represents On-Balance Volume: cumulative volume signed by the
// close-to-close direction. A flat close leaves the total unchanged.
type OBV struct {
	total     float64
	prevClose float64
	hasPrev   bool
}

// NewOBV creates a new OBV indicator.
func NewOBV() Indicator {
	return &OBV{
		total:     0,
		prevClose: 0,
		hasPrev:   false,
	}
}

// Name returns the name of the indicator.
func (o *OBV) Name() types.IndicatorType {
	return types.IndicatorTypeOBV
}

// Columns returns the feature columns this indicator produces.
func (o *OBV) Columns() []string {
	return []string{types.FeatureOBV}
}

// Config configures the OBV indicator. OBV takes no parameters.
func (o *OBV) Config(params ...any) error {
	if len(params) != 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "OBV takes no configuration parameters")
	}

	return nil
}

// Update implements the Indicator interface. OBV is defined from the first
// bar; there is no warm-up prefix.
func (o *OBV) Update(bar types.MarketData, out map[string]float64) {
	if o.hasPrev {
		switch {
		case bar.Close > o.prevClose:
			o.total += bar.Volume
		case bar.Close < o.prevClose:
			o.total -= bar.Volume
		}
	}

	o.prevClose = bar.Close
	o.hasPrev = true

	out[types.FeatureOBV] = o.total
}
