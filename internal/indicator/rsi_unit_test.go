package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/stretchr/testify/suite"
)

type RSIUnitTestSuite struct {
	suite.Suite
}

func TestRSIUnitSuite(t *testing.T) {
	suite.Run(t, new(RSIUnitTestSuite))
}

func closeBars(closes ...float64) []types.MarketData {
	start := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	bars := make([]types.MarketData, len(closes))

	for i, c := range closes {
		bars[i] = types.MarketData{
			Instrument: "AAPL",
			Time:       start.Add(time.Duration(i) * time.Minute),
			Open:       c,
			High:       c + 1,
			Low:        c - 1,
			Close:      c,
			Volume:     1000,
		}
	}

	return bars
}

func (suite *RSIUnitTestSuite) TestNewRSI() {
	rsi := NewRSI()
	suite.NotNil(rsi)

	rsiImpl := rsi.(*RSI)
	suite.Equal(14, rsiImpl.period)
}

func (suite *RSIUnitTestSuite) TestName() {
	rsi := NewRSI()
	suite.Equal(types.IndicatorTypeRSI, rsi.Name())
	suite.Equal([]string{types.FeatureRSI}, rsi.Columns())
}

func (suite *RSIUnitTestSuite) TestConfigValidPeriod() {
	rsi := NewRSI()
	err := rsi.Config(21)
	suite.NoError(err)
	suite.Equal(21, rsi.(*RSI).period)
}

func (suite *RSIUnitTestSuite) TestConfigNoParams() {
	err := NewRSI().Config()
	suite.Error(err)
}

func (suite *RSIUnitTestSuite) TestConfigInvalidPeriodType() {
	err := NewRSI().Config("invalid")
	suite.Error(err)
	suite.Contains(err.Error(), "invalid type for period")
}

func (suite *RSIUnitTestSuite) TestConfigInvalidPeriodValue() {
	err := NewRSI().Config(0)
	suite.Error(err)
	suite.Contains(err.Error(), "period must be a positive integer")

	err = NewRSI().Config(-5)
	suite.Error(err)
}

func (suite *RSIUnitTestSuite) TestWarmUpLength() {
	rsi := NewRSI()
	suite.NoError(rsi.Config(14))

	out := make(map[string]float64)

	// First defined value appears once period deltas are accumulated.
	for i, bar := range closeBars(seq(30)...) {
		rsi.Update(bar, out)

		if i < 14 {
			suite.True(math.IsNaN(out[types.FeatureRSI]), "bar %d should be warm-up", i)
		} else {
			suite.False(math.IsNaN(out[types.FeatureRSI]), "bar %d should be defined", i)
		}
	}
}

func (suite *RSIUnitTestSuite) TestPerfectUptrendIsHundred() {
	rsi := NewRSI()
	suite.NoError(rsi.Config(5))

	out := make(map[string]float64)
	for _, bar := range closeBars(100, 101, 102, 103, 104, 105, 106) {
		rsi.Update(bar, out)
	}

	suite.Equal(100.0, out[types.FeatureRSI])
}

func (suite *RSIUnitTestSuite) TestBalancedMovesAreFifty() {
	rsi := NewRSI()
	suite.NoError(rsi.Config(2))

	out := make(map[string]float64)
	for _, bar := range closeBars(100, 101, 100) {
		rsi.Update(bar, out)
	}

	// One gain of 1 and one loss of 1: RS = 1, RSI = 50.
	suite.InDelta(50.0, out[types.FeatureRSI], 1e-12)
}

func (suite *RSIUnitTestSuite) TestBoundedBetweenZeroAndHundred() {
	rsi := NewRSI()
	suite.NoError(rsi.Config(3))

	closes := []float64{100, 97, 103, 95, 108, 99, 104, 101, 96, 110}
	out := make(map[string]float64)

	for i, bar := range closeBars(closes...) {
		rsi.Update(bar, out)

		if i >= 3 {
			v := out[types.FeatureRSI]
			suite.GreaterOrEqual(v, 0.0)
			suite.LessOrEqual(v, 100.0)
		}
	}
}

// seq returns n strictly increasing closes.
func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}

	return out
}
