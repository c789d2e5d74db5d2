package indicator

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/stretchr/testify/suite"
)

type BollingerBandsUnitTestSuite struct {
	suite.Suite
}

func TestBollingerBandsUnitSuite(t *testing.T) {
	suite.Run(t, new(BollingerBandsUnitTestSuite))
}

func (suite *BollingerBandsUnitTestSuite) TestNewBollingerBands() {
	bb := NewBollingerBands()
	impl := bb.(*BollingerBands)
	suite.Equal(20, impl.period)
	suite.Equal(2.0, impl.stdDevMultiplier)
}

func (suite *BollingerBandsUnitTestSuite) TestConfig() {
	bb := NewBollingerBands()
	suite.NoError(bb.Config(10, 1.5))

	impl := bb.(*BollingerBands)
	suite.Equal(10, impl.period)
	suite.Equal(1.5, impl.stdDevMultiplier)

	suite.Error(NewBollingerBands().Config())
	suite.Error(NewBollingerBands().Config(1))
	suite.Error(NewBollingerBands().Config(10, -1.0))
	suite.Error(NewBollingerBands().Config(10, "2"))
}

func (suite *BollingerBandsUnitTestSuite) TestBandsAroundMean() {
	bb := NewBollingerBands()
	suite.NoError(bb.Config(4, 2.0))

	out := make(map[string]float64)
	closes := []float64{10, 12, 14, 16}

	for i, bar := range closeBars(closes...) {
		bb.Update(bar, out)

		if i < 3 {
			suite.True(math.IsNaN(out[types.FeatureBBMiddle]))
		}
	}

	// mean 13, sample std of {10,12,14,16} = sqrt(20/3).
	std := math.Sqrt(20.0 / 3.0)
	suite.InDelta(13.0, out[types.FeatureBBMiddle], 1e-9)
	suite.InDelta(13.0+2*std, out[types.FeatureBBUpper], 1e-9)
	suite.InDelta(13.0-2*std, out[types.FeatureBBLower], 1e-9)
}

func (suite *BollingerBandsUnitTestSuite) TestFlatSeriesCollapsesBands() {
	bb := NewBollingerBands()
	suite.NoError(bb.Config(3))

	out := make(map[string]float64)
	for _, bar := range closeBars(50, 50, 50, 50) {
		bb.Update(bar, out)
	}

	suite.InDelta(50.0, out[types.FeatureBBMiddle], 1e-9)
	suite.InDelta(50.0, out[types.FeatureBBUpper], 1e-9)
	suite.InDelta(50.0, out[types.FeatureBBLower], 1e-9)
}
