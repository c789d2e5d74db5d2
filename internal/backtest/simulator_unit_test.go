package backtest

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/stretchr/testify/suite"
)

type SimulatorUnitTestSuite struct {
	suite.Suite
	config SimulatorConfig
}

func TestSimulatorUnitSuite(t *testing.T) {
	suite.Run(t, new(SimulatorUnitTestSuite))
}

func (suite *SimulatorUnitTestSuite) SetupTest() {
	suite.config = DefaultSimulatorConfig()
}

var simStart = time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)

// simBar builds one minute bar at offset i.
func simBar(i int, open, high, low, close float64) types.MarketData {
	return types.MarketData{
		Instrument: "AAPL",
		Time:       simStart.Add(time.Duration(i) * time.Minute),
		Open:       open,
		High:       high,
		Low:        low,
		Close:      close,
		Volume:     1000,
	}
}

// longLabel is the canonical long setup: entry 100, stop 98, target 104.
func longLabel(minute int) types.Label {
	ts := simStart.Add(time.Duration(minute) * time.Minute)

	return types.Label{
		ID:             types.DeriveLabelID("AAPL", ts, "ma_crossover"),
		Instrument:     "AAPL",
		Time:           ts,
		StrategyID:     "ma_crossover",
		Side:           types.SideLong,
		EntryPrice:     100,
		StopLoss:       98,
		TakeProfit:     104,
		HorizonMinutes: 30,
	}
}

func shortLabel(minute int) types.Label {
	label := longLabel(minute)
	label.Side = types.SideShort
	label.StopLoss = 102
	label.TakeProfit = 96

	return label
}

func (suite *SimulatorUnitTestSuite) TestConfigValidate() {
	suite.NoError(suite.config.Validate())

	bad := suite.config
	bad.InitialCapital = 0
	suite.Error(bad.Validate())

	bad = suite.config
	bad.PositionFraction = 1.5
	suite.Error(bad.Validate())

	bad = suite.config
	bad.Commission = -0.001
	suite.Error(bad.Validate())

	bad = suite.config
	bad.BarDuration = 0
	suite.Error(bad.Validate())

	bad = suite.config
	bad.Tiebreak = "coin_flip"
	suite.Error(bad.Validate())
}

func (suite *SimulatorUnitTestSuite) TestTakeProfitFirstTouch() {
	bars := []types.MarketData{
		simBar(0, 100, 101, 99.5, 100.5),
		simBar(1, 100.5, 102, 100, 101.5),
		simBar(2, 101.5, 104.5, 101, 103), // target touched here
		simBar(3, 103, 105, 102.5, 104.8),
	}

	label := longLabel(0)
	result := Simulate(suite.config, bars, &label)

	suite.Equal(types.ExitReasonTakeProfit, result.ExitReason)
	suite.Equal(bars[2].Time, result.ExitTime)
	suite.Equal(104.0, result.ExitPrice)
	suite.Equal(100.0, result.EntryPrice)

	// gross 4%, net 4% - 2 * 0.1% commission = 3.8%.
	suite.InDelta(0.04, result.GrossReturn, 1e-12)
	suite.InDelta(0.038, result.NetReturn, 1e-12)
	// 2% of 100k sized: 2000 * 0.038 = 76.
	suite.InDelta(76.0, result.PnLDollars, 1e-9)
	suite.InDelta(120.0, result.HoldingSeconds, 1e-9)
	suite.True(result.IsWin())
}

func (suite *SimulatorUnitTestSuite) TestStopLossFirstTouch() {
	bars := []types.MarketData{
		simBar(0, 100, 101, 99, 100.5),
		simBar(1, 100.5, 101, 97.5, 98.2), // stop touched here
		simBar(2, 98.2, 104.5, 98, 104),   // later target touch is irrelevant
	}

	label := longLabel(0)
	result := Simulate(suite.config, bars, &label)

	suite.Equal(types.ExitReasonStopLoss, result.ExitReason)
	suite.Equal(98.0, result.ExitPrice)
	suite.InDelta(-0.02, result.GrossReturn, 1e-12)
	suite.InDelta(-0.022, result.NetReturn, 1e-12)
	suite.False(result.IsWin())
}

func (suite *SimulatorUnitTestSuite) TestContestedBarStopLossPolicy() {
	bars := []types.MarketData{
		simBar(0, 100, 105, 97, 101), // touches both levels
	}

	label := longLabel(0)
	result := Simulate(suite.config, bars, &label)

	suite.Equal(types.ExitReasonStopLoss, result.ExitReason)
	suite.Equal(98.0, result.ExitPrice)
}

func (suite *SimulatorUnitTestSuite) TestContestedBarTakeProfitPolicy() {
	config := suite.config
	config.Tiebreak = TiebreakTakeProfit

	bars := []types.MarketData{
		simBar(0, 100, 105, 97, 101),
	}

	label := longLabel(0)
	result := Simulate(config, bars, &label)

	suite.Equal(types.ExitReasonTakeProfit, result.ExitReason)
	suite.Equal(104.0, result.ExitPrice)
}

func (suite *SimulatorUnitTestSuite) TestTimeoutAtHorizonClose() {
	bars := make([]types.MarketData, 60)
	for i := range bars {
		bars[i] = simBar(i, 100, 100.5, 99.5, 100.2)
	}

	label := longLabel(0)
	result := Simulate(suite.config, bars, &label)

	suite.Equal(types.ExitReasonTimeout, result.ExitReason)
	// Horizon of 30 minutes on 1-minute bars exits at bar index 30.
	suite.Equal(bars[30].Time, result.ExitTime)
	suite.Equal(bars[30].Close, result.ExitPrice)
}

func (suite *SimulatorUnitTestSuite) TestTimeoutTruncatedByEndOfData() {
	bars := []types.MarketData{
		simBar(0, 100, 100.5, 99.5, 100.2),
		simBar(1, 100.2, 100.6, 99.6, 100.3),
	}

	label := longLabel(0)
	result := Simulate(suite.config, bars, &label)

	suite.Equal(types.ExitReasonTimeout, result.ExitReason)
	suite.Equal(bars[1].Close, result.ExitPrice)
}

func (suite *SimulatorUnitTestSuite) TestNoEntryBarFound() {
	bars := []types.MarketData{
		simBar(0, 100, 100.5, 99.5, 100.2),
	}

	label := longLabel(10) // beyond the last bar
	result := Simulate(suite.config, bars, &label)

	suite.Equal(types.ExitReasonNoExitFound, result.ExitReason)
	suite.False(result.IsWin())
}

func (suite *SimulatorUnitTestSuite) TestEntryBarSnapsForward() {
	// No bar exactly at the label time: entry snaps to the next bar.
	bars := []types.MarketData{
		simBar(0, 100, 100.5, 99.5, 100.2),
		simBar(5, 100.2, 104.5, 100, 104),
	}

	label := longLabel(2)
	result := Simulate(suite.config, bars, &label)

	suite.Equal(bars[1].Time, result.EntryTime)
	suite.Equal(types.ExitReasonTakeProfit, result.ExitReason)
}

func (suite *SimulatorUnitTestSuite) TestShortSideExits() {
	bars := []types.MarketData{
		simBar(0, 100, 100.5, 99.5, 100),
		simBar(1, 100, 100.8, 95.5, 96.2), // short target touched
	}

	label := shortLabel(0)
	result := Simulate(suite.config, bars, &label)

	suite.Equal(types.ExitReasonTakeProfit, result.ExitReason)
	suite.Equal(96.0, result.ExitPrice)
	// Short gain: -1 * (96 - 100) / 100 = 4%.
	suite.InDelta(0.04, result.GrossReturn, 1e-12)
}

func (suite *SimulatorUnitTestSuite) TestSlippageMovesEntryAgainstTrade() {
	config := suite.config
	config.Slippage = 0.001

	bars := []types.MarketData{
		simBar(0, 100, 104.5, 99.5, 104),
	}

	longOrder := longLabel(0)
	result := Simulate(config, bars, &longOrder)
	suite.InDelta(100.1, result.EntryPrice, 1e-12)

	shortOrder := shortLabel(0)
	shortBars := []types.MarketData{simBar(0, 100, 100.5, 95.5, 96)}
	result = Simulate(config, shortBars, &shortOrder)
	suite.InDelta(99.9, result.EntryPrice, 1e-12)
}

func (suite *SimulatorUnitTestSuite) TestHorizonBarsFromDuration() {
	config := suite.config
	config.BarDuration = 5 * time.Minute

	bars := make([]types.MarketData, 20)
	for i := range bars {
		bars[i] = types.MarketData{
			Instrument: "AAPL",
			Time:       simStart.Add(time.Duration(i) * 5 * time.Minute),
			Open:       100, High: 100.5, Low: 99.5, Close: 100.2,
			Volume: 1000,
		}
	}

	label := longLabel(0)
	result := Simulate(config, bars, &label)

	// 30-minute horizon over 5-minute bars exits at bar index 6.
	suite.Equal(types.ExitReasonTimeout, result.ExitReason)
	suite.Equal(bars[6].Time, result.ExitTime)
}
