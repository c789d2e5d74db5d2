package strategy

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/stretchr/testify/suite"
)

type VWAPReversionUnitTestSuite struct {
	suite.Suite
}

func TestVWAPReversionUnitSuite(t *testing.T) {
	suite.Run(t, new(VWAPReversionUnitTestSuite))
}

// reversionRow builds one row with the reversion inputs populated.
func reversionRow(i int, close, vwap, rsi, atr float64) types.FeatureRow {
	start := time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)

	return types.FeatureRow{
		MarketData: types.MarketData{
			Instrument: "AAPL",
			Time:       start.Add(time.Duration(i) * time.Minute),
			Open:       close,
			High:       close + 1,
			Low:        close - 1,
			Close:      close,
			Volume:     1000,
		},
		Features: map[string]float64{
			types.FeatureVWAP: vwap,
			types.FeatureRSI:  rsi,
			types.FeatureATR:  atr,
		},
	}
}

func (suite *VWAPReversionUnitTestSuite) TestNewVWAPReversionRejectsInvalidConfig() {
	bad := DefaultVWAPReversionConfig()
	bad.BandPct = 0

	_, err := NewVWAPReversion(bad)
	suite.Error(err)

	bad = DefaultVWAPReversionConfig()
	bad.OversoldThreshold = 60

	_, err = NewVWAPReversion(bad)
	suite.Error(err)
}

func (suite *VWAPReversionUnitTestSuite) TestOversoldBelowBandEmitsLong() {
	detector, err := NewVWAPReversion(DefaultVWAPReversionConfig())
	suite.Require().NoError(err)

	rows := []types.FeatureRow{
		reversionRow(0, 99.5, 100, 40, 1), // inside the band
		reversionRow(1, 98.0, 100, 30, 1), // stretched and oversold
	}

	signals, err := detector.Detect(rows)
	suite.Require().NoError(err)
	suite.Require().Len(signals, 1)

	signal := signals[0]
	suite.Equal(types.SideLong, signal.Side)
	suite.Equal(StrategyIDVWAPReversion, signal.StrategyID)
	suite.Equal(rows[1].Time, signal.Time)
	suite.Equal(98.0, signal.EntryPrice)
	suite.InDelta(96.5, signal.StopLoss, 1e-12)
	suite.InDelta(101.0, signal.TakeProfit, 1e-12)
	suite.NoError(signal.Validate())
}

func (suite *VWAPReversionUnitTestSuite) TestOverboughtAboveBandEmitsShort() {
	detector, err := NewVWAPReversion(DefaultVWAPReversionConfig())
	suite.Require().NoError(err)

	rows := []types.FeatureRow{
		reversionRow(0, 102, 100, 70, 1),
	}

	signals, err := detector.Detect(rows)
	suite.Require().NoError(err)
	suite.Require().Len(signals, 1)

	signal := signals[0]
	suite.Equal(types.SideShort, signal.Side)
	suite.InDelta(103.5, signal.StopLoss, 1e-12)
	suite.InDelta(99.0, signal.TakeProfit, 1e-12)
	suite.NoError(signal.Validate())
}

func (suite *VWAPReversionUnitTestSuite) TestStretchWithoutRSIConfirmationIgnored() {
	detector, err := NewVWAPReversion(DefaultVWAPReversionConfig())
	suite.Require().NoError(err)

	rows := []types.FeatureRow{
		reversionRow(0, 98, 100, 50, 1),  // below band but RSI neutral
		reversionRow(1, 102, 100, 50, 1), // above band but RSI neutral
	}

	signals, err := detector.Detect(rows)
	suite.Require().NoError(err)
	suite.Empty(signals)
}

func (suite *VWAPReversionUnitTestSuite) TestWarmUpRowsSkipped() {
	detector, err := NewVWAPReversion(DefaultVWAPReversionConfig())
	suite.Require().NoError(err)

	row := reversionRow(0, 98, 100, 30, 1)
	delete(row.Features, types.FeatureVWAP)

	signals, err := detector.Detect([]types.FeatureRow{row})
	suite.Require().NoError(err)
	suite.Empty(signals)
}
