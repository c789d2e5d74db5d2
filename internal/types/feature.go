package types

import "math"

// Feature column names produced by the feature engine. Detectors address
// indicator values by these keys.
const (
	FeatureEMAFast      = "ema_fast"
	FeatureEMASlow      = "ema_slow"
	FeatureSMA          = "sma"
	FeatureRSI          = "rsi"
	FeatureMACD         = "macd"
	FeatureMACDSignal   = "macd_signal"
	FeatureMACDHist     = "macd_hist"
	FeatureBBMiddle     = "bb_middle"
	FeatureBBUpper      = "bb_upper"
	FeatureBBLower      = "bb_lower"
	FeatureATR          = "atr"
	FeatureVWAP         = "vwap"
	FeatureOBV          = "obv"
	FeatureStochK       = "stoch_k"
	FeatureStochD       = "stoch_d"
	FeatureWilliamsR    = "williams_r"
	FeatureCCI          = "cci"
	FeatureMFI          = "mfi"
	FeatureMinuteSin    = "minute_sin"
	FeatureMinuteCos    = "minute_cos"
	FeatureDayOfWeekSin = "dow_sin"
	FeatureDayOfWeekCos = "dow_cos"
)

// FeatureRow is a bar enriched with indicator values. Indicator fields are NaN
// for the warm-up prefix of a series and must never be read as zero.
type FeatureRow struct {
	MarketData
	Features map[string]float64
}

// Feature returns the named indicator value, or NaN when the indicator is not
// present or not yet warmed up.
func (f *FeatureRow) Feature(name string) float64 {
	v, ok := f.Features[name]
	if !ok {
		return math.NaN()
	}

	return v
}

// Defined reports whether every named indicator has a usable (non-NaN) value.
func (f *FeatureRow) Defined(names ...string) bool {
	for _, name := range names {
		if math.IsNaN(f.Feature(name)) {
			return false
		}
	}

	return true
}
