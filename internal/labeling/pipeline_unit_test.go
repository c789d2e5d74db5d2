package labeling

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-research/internal/logger"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/stretchr/testify/suite"
)

type PipelineUnitTestSuite struct {
	suite.Suite
}

func TestPipelineUnitSuite(t *testing.T) {
	suite.Run(t, new(PipelineUnitTestSuite))
}

var testStart = time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)

func testSignal(instrument string, minute int, side types.Side) types.Signal {
	entry := 100.0
	stop, target := 98.0, 104.0

	if side == types.SideShort {
		stop, target = 102.0, 96.0
	}

	return types.Signal{
		Instrument: instrument,
		Time:       testStart.Add(time.Duration(minute) * time.Minute),
		Side:       side,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: target,
		StrategyID: "ma_crossover",
		Confidence: 0.7,
		RiskReward: 2.0,
		Metadata:   map[string]float64{"separation": 0.4},
	}
}

func testFeatures(instrument string, n int) []types.FeatureRow {
	rows := make([]types.FeatureRow, n)

	for i := range rows {
		rows[i] = types.FeatureRow{
			MarketData: types.MarketData{
				Instrument: instrument,
				Time:       testStart.Add(time.Duration(i) * time.Minute),
				Open:       100,
				High:       101,
				Low:        99,
				Close:      100.5,
				Volume:     1000,
			},
			Features: map[string]float64{},
		}
	}

	return rows
}

func (suite *PipelineUnitTestSuite) newPipeline(config Config) *Pipeline {
	pipeline, err := NewPipeline(config, logger.NewNopLogger())
	suite.Require().NoError(err)

	return pipeline
}

func (suite *PipelineUnitTestSuite) TestNewPipelineRejectsInvalidConfig() {
	_, err := NewPipeline(Config{NegativeRatio: -1, Seed: 42, HorizonMinutes: 30}, logger.NewNopLogger())
	suite.Error(err)

	_, err = NewPipeline(Config{NegativeRatio: 3, Seed: 42, HorizonMinutes: 0}, logger.NewNopLogger())
	suite.Error(err)
}

func (suite *PipelineUnitTestSuite) TestPositiveLabelDerivedFields() {
	pipeline := suite.newPipeline(DefaultConfig())

	signals := []types.Signal{testSignal("AAPL", 5, types.SideLong)}

	labels, err := pipeline.Build(signals, nil)
	suite.Require().NoError(err)
	suite.Require().Len(labels, 1)

	label := labels[0]
	suite.Equal("AAPL", label.Instrument)
	suite.Equal(types.SideLong, label.Side)
	suite.False(label.IsNegative)
	suite.NotNil(label.Signal)
	suite.Equal(types.DeriveLabelID("AAPL", signals[0].Time, "ma_crossover"), label.ID)

	// expected_return = side * (target - entry) / entry
	suite.InDelta(0.04, label.ExpectedReturn, 1e-12)
	suite.InDelta(0.02, label.RiskAmount, 1e-12)
	suite.InDelta(0.04, label.RewardAmount, 1e-12)
	suite.Equal(types.DefaultHorizonMinutes, label.HorizonMinutes)
	suite.NoError(label.Validate())
}

func (suite *PipelineUnitTestSuite) TestShortSignalExpectedReturnPositive() {
	pipeline := suite.newPipeline(DefaultConfig())

	labels, err := pipeline.Build([]types.Signal{testSignal("AAPL", 5, types.SideShort)}, nil)
	suite.Require().NoError(err)
	suite.Require().Len(labels, 1)

	// Short target below entry still yields a positive expected return.
	suite.InDelta(0.04, labels[0].ExpectedReturn, 1e-12)
}

func (suite *PipelineUnitTestSuite) TestHorizonOverride() {
	pipeline := suite.newPipeline(DefaultConfig())

	signal := testSignal("AAPL", 5, types.SideLong)
	signal.HorizonMinutes = 90

	labels, err := pipeline.Build([]types.Signal{signal}, nil)
	suite.Require().NoError(err)
	suite.Equal(90, labels[0].HorizonMinutes)
}

func (suite *PipelineUnitTestSuite) TestInvalidSignalRejected() {
	pipeline := suite.newPipeline(DefaultConfig())

	signal := testSignal("AAPL", 5, types.SideLong)
	signal.StopLoss = 105 // violates long price ordering

	_, err := pipeline.Build([]types.Signal{signal}, nil)
	suite.Error(err)
}

func (suite *PipelineUnitTestSuite) TestNegativeSamplingRatioAndExclusion() {
	config := Config{NegativeRatio: 2, Seed: 42, HorizonMinutes: 30}
	pipeline := suite.newPipeline(config)

	signals := []types.Signal{
		testSignal("AAPL", 5, types.SideLong),
		testSignal("AAPL", 20, types.SideShort),
	}
	features := map[string][]types.FeatureRow{
		"AAPL": testFeatures("AAPL", 60),
	}

	labels, err := pipeline.Build(signals, features)
	suite.Require().NoError(err)
	suite.Len(labels, 2+2*2)

	positiveTimes := map[time.Time]struct{}{
		signals[0].Time: {},
		signals[1].Time: {},
	}

	negatives := 0

	for _, label := range labels {
		if !label.IsNegative {
			continue
		}

		negatives++
		suite.Equal(types.StrategyIDNegative, label.StrategyID)
		suite.Equal(types.Side(0), label.Side)
		suite.Nil(label.Signal)
		suite.NotContains(positiveTimes, label.Time)
		suite.NoError(label.Validate())
	}

	suite.Equal(4, negatives)
}

func (suite *PipelineUnitTestSuite) TestNegativeCountCappedByPool() {
	config := Config{NegativeRatio: 100, Seed: 42, HorizonMinutes: 30}
	pipeline := suite.newPipeline(config)

	signals := []types.Signal{testSignal("AAPL", 5, types.SideLong)}
	features := map[string][]types.FeatureRow{
		"AAPL": testFeatures("AAPL", 10),
	}

	labels, err := pipeline.Build(signals, features)
	suite.Require().NoError(err)

	// 10 rows, one holds the positive: 9 candidates.
	suite.Len(labels, 1+9)
}

func (suite *PipelineUnitTestSuite) TestDeterministicAcrossRuns() {
	config := Config{NegativeRatio: 3, Seed: 42, HorizonMinutes: 30}

	signals := []types.Signal{
		testSignal("AAPL", 5, types.SideLong),
		testSignal("MSFT", 12, types.SideShort),
	}
	features := map[string][]types.FeatureRow{
		"AAPL": testFeatures("AAPL", 120),
		"MSFT": testFeatures("MSFT", 120),
	}

	first, err := suite.newPipeline(config).Build(signals, features)
	suite.Require().NoError(err)

	second, err := suite.newPipeline(config).Build(signals, features)
	suite.Require().NoError(err)

	suite.Equal(first, second)
}

func (suite *PipelineUnitTestSuite) TestDifferentSeedsSampleDifferently() {
	signals := []types.Signal{testSignal("AAPL", 5, types.SideLong)}
	features := map[string][]types.FeatureRow{
		"AAPL": testFeatures("AAPL", 500),
	}

	first, err := suite.newPipeline(Config{NegativeRatio: 3, Seed: 1, HorizonMinutes: 30}).Build(signals, features)
	suite.Require().NoError(err)

	second, err := suite.newPipeline(Config{NegativeRatio: 3, Seed: 2, HorizonMinutes: 30}).Build(signals, features)
	suite.Require().NoError(err)

	suite.NotEqual(first, second)
}

func (suite *PipelineUnitTestSuite) TestOutputSorted() {
	config := Config{NegativeRatio: 2, Seed: 42, HorizonMinutes: 30}
	pipeline := suite.newPipeline(config)

	signals := []types.Signal{
		testSignal("MSFT", 30, types.SideLong),
		testSignal("AAPL", 10, types.SideShort),
	}
	features := map[string][]types.FeatureRow{
		"AAPL": testFeatures("AAPL", 60),
		"MSFT": testFeatures("MSFT", 60),
	}

	labels, err := pipeline.Build(signals, features)
	suite.Require().NoError(err)

	for i := 1; i < len(labels); i++ {
		prev, cur := labels[i-1], labels[i]

		if prev.Instrument != cur.Instrument {
			suite.Less(prev.Instrument, cur.Instrument)

			continue
		}

		suite.False(cur.Time.Before(prev.Time))
	}
}

func (suite *PipelineUnitTestSuite) TestZeroRatioYieldsNoNegatives() {
	config := Config{NegativeRatio: 0, Seed: 42, HorizonMinutes: 30}
	pipeline := suite.newPipeline(config)

	labels, err := pipeline.Build(
		[]types.Signal{testSignal("AAPL", 5, types.SideLong)},
		map[string][]types.FeatureRow{"AAPL": testFeatures("AAPL", 60)},
	)
	suite.Require().NoError(err)
	suite.Len(labels, 1)
}
