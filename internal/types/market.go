package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-research/pkg/errors"
)

// MarketData represents a single OHLCV bar for one instrument.
type MarketData struct {
	Instrument string    `yaml:"instrument" json:"instrument" csv:"instrument" validate:"required"`
	Time       time.Time `yaml:"time" json:"time" csv:"time" validate:"required"`
	Open       float64   `yaml:"open" json:"open" csv:"open" validate:"gt=0"`
	High       float64   `yaml:"high" json:"high" csv:"high" validate:"gt=0"`
	Low        float64   `yaml:"low" json:"low" csv:"low" validate:"gt=0"`
	Close      float64   `yaml:"close" json:"close" csv:"close" validate:"gt=0"`
	Volume     float64   `yaml:"volume" json:"volume" csv:"volume" validate:"gte=0"`
}

var marketDataValidator = validator.New()

// Validate checks the bar for structural validity: required fields plus the
// low <= min(open, close) <= max(open, close) <= high ordering.
func (m *MarketData) Validate() error {
	if err := marketDataValidator.Struct(m); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidBar, "bar failed field validation", err)
	}

	lo, hi := m.Open, m.Close
	if lo > hi {
		lo, hi = hi, lo
	}

	if m.Low > lo || m.High < hi {
		return errors.Newf(errors.ErrCodeInvalidBar,
			"bar range invariant violated for %s at %s: low=%f open=%f close=%f high=%f",
			m.Instrument, m.Time.Format(time.RFC3339), m.Low, m.Open, m.Close, m.High)
	}

	return nil
}

// TypicalPrice returns (high + low + close) / 3, the price used by VWAP, CCI and MFI.
func (m *MarketData) TypicalPrice() float64 {
	return (m.High + m.Low + m.Close) / 3
}

// TrueRange returns the true range of this bar given the previous close.
// When there is no previous bar, pass the bar's own close.
func (m *MarketData) TrueRange(prevClose float64) float64 {
	tr := m.High - m.Low
	if d := m.High - prevClose; d < 0 {
		d = -d
		if d > tr {
			tr = d
		}
	} else if d > tr {
		tr = d
	}

	if d := m.Low - prevClose; d < 0 {
		d = -d
		if d > tr {
			tr = d
		}
	} else if d > tr {
		tr = d
	}

	return tr
}

// SortedByTime reports whether the series has strictly increasing timestamps.
func SortedByTime(bars []MarketData) bool {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return false
		}
	}

	return true
}
