// Package indicator computes technical indicators over per-instrument bar
// series. Indicators are streaming: each instance consumes one instrument's
// bars in order and writes its columns into the feature row for every bar,
// NaN until its lookback window is warm. Instances are never shared across
// instruments; the engine builds a fresh set per series.
package indicator

import (
	"github.com/rxtech-lab/argo-research/internal/types"
)

// Indicator is a streaming technical indicator bound to a single instrument
// series.
type Indicator interface {
	// Name returns the name of the indicator.
	Name() types.IndicatorType
	// Columns returns the feature columns this indicator produces.
	Columns() []string
	// Config configures indicator parameters before the first Update.
	Config(params ...any) error
	// Update consumes the next bar and writes this indicator's columns into
	// out. Columns are NaN while the lookback window is incomplete.
	Update(bar types.MarketData, out map[string]float64)
}
