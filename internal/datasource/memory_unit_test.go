package datasource

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/stretchr/testify/suite"
)

type MemoryUnitTestSuite struct {
	suite.Suite
	source *InMemorySource
}

func TestMemoryUnitSuite(t *testing.T) {
	suite.Run(t, new(MemoryUnitTestSuite))
}

var memStart = time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)

func (suite *MemoryUnitTestSuite) SetupTest() {
	bars := map[string][]types.MarketData{}

	for _, instrument := range []string{"AAPL", "MSFT"} {
		for i := 0; i < 10; i++ {
			bars[instrument] = append(bars[instrument], types.MarketData{
				Instrument: instrument,
				Time:       memStart.Add(time.Duration(i) * time.Minute),
				Open:       100, High: 101, Low: 99, Close: 100.5,
				Volume: 1000,
			})
		}
	}

	suite.source = NewInMemorySource(bars)
}

func (suite *MemoryUnitTestSuite) TestReadBarsUnbounded() {
	bars, err := suite.source.ReadBars(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Len(bars, 2)
	suite.Len(bars["AAPL"], 10)
	suite.Len(bars["MSFT"], 10)
}

func (suite *MemoryUnitTestSuite) TestReadBarsWindow() {
	start := memStart.Add(2 * time.Minute)
	end := memStart.Add(5 * time.Minute)

	bars, err := suite.source.ReadBars(optional.Some(start), optional.Some(end))
	suite.Require().NoError(err)

	// Inclusive on both ends: minutes 2, 3, 4, 5.
	suite.Len(bars["AAPL"], 4)
	suite.Equal(start, bars["AAPL"][0].Time)
	suite.Equal(end, bars["AAPL"][3].Time)
}

func (suite *MemoryUnitTestSuite) TestReadBarsEmptyWindowDropsInstrument() {
	start := memStart.Add(time.Hour)

	bars, err := suite.source.ReadBars(optional.Some(start), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Empty(bars)
}

func (suite *MemoryUnitTestSuite) TestCount() {
	count, err := suite.source.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(20, count)

	count, err = suite.source.Count(optional.Some(memStart.Add(8*time.Minute)), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(4, count)
}

func (suite *MemoryUnitTestSuite) TestClose() {
	suite.NoError(suite.source.Close())
}
