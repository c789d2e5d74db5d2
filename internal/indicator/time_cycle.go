package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

const (
	minutesPerDay = 24 * 60
	daysPerWeek   = 7
)

// TimeCycle encodes minute-of-day and day-of-week as sin/cos pairs so models
// see time as cyclical rather than ordinal. Defined from the first bar.
type TimeCycle struct{}

// NewTimeCycle creates a new time-encoding indicator.
func NewTimeCycle() Indicator {
	return &TimeCycle{}
}

// Name returns the name of the indicator.
func (t *TimeCycle) Name() types.IndicatorType {
	return types.IndicatorTypeTimeCycle
}

// Columns returns the feature columns this indicator produces.
func (t *TimeCycle) Columns() []string {
	return []string{
		types.FeatureMinuteSin, types.FeatureMinuteCos,
		types.FeatureDayOfWeekSin, types.FeatureDayOfWeekCos,
	}
}

// Config configures the indicator. TimeCycle takes no parameters.
func (t *TimeCycle) Config(params ...any) error {
	if len(params) != 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "TimeCycle takes no configuration parameters")
	}

	return nil
}

// Update implements the Indicator interface.
func (t *TimeCycle) Update(bar types.MarketData, out map[string]float64) {
	utc := bar.Time.UTC()

	minute := float64(utc.Hour()*60 + utc.Minute())
	minuteAngle := 2 * math.Pi * minute / minutesPerDay
	out[types.FeatureMinuteSin] = math.Sin(minuteAngle)
	out[types.FeatureMinuteCos] = math.Cos(minuteAngle)

	dow := float64(utc.Weekday())
	dowAngle := 2 * math.Pi * dow / daysPerWeek
	out[types.FeatureDayOfWeekSin] = math.Sin(dowAngle)
	out[types.FeatureDayOfWeekCos] = math.Cos(dowAngle)
}
