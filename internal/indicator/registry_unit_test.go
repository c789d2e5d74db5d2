package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-research/internal/types"
	"github.com/rxtech-lab/argo-research/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryUnitTestSuite struct {
	suite.Suite
	registry IndicatorRegistry
}

func TestRegistryUnitSuite(t *testing.T) {
	suite.Run(t, new(RegistryUnitTestSuite))
}

func (suite *RegistryUnitTestSuite) SetupTest() {
	suite.registry = NewIndicatorRegistry()
}

func (suite *RegistryUnitTestSuite) TestRegisterAndGet() {
	suite.NoError(suite.registry.RegisterIndicator(types.IndicatorTypeRSI, func() Indicator { return NewRSI() }))

	factory, err := suite.registry.GetIndicator(types.IndicatorTypeRSI)
	suite.NoError(err)
	suite.Equal(types.IndicatorTypeRSI, factory().Name())
}

func (suite *RegistryUnitTestSuite) TestRegisterDuplicate() {
	suite.NoError(suite.registry.RegisterIndicator(types.IndicatorTypeRSI, func() Indicator { return NewRSI() }))

	err := suite.registry.RegisterIndicator(types.IndicatorTypeRSI, func() Indicator { return NewRSI() })
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists))
}

func (suite *RegistryUnitTestSuite) TestGetUnknown() {
	_, err := suite.registry.GetIndicator(types.IndicatorTypeRSI)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryUnitTestSuite) TestListPreservesRegistrationOrder() {
	suite.NoError(suite.registry.RegisterIndicator(types.IndicatorTypeATR, func() Indicator { return NewATR() }))
	suite.NoError(suite.registry.RegisterIndicator(types.IndicatorTypeRSI, func() Indicator { return NewRSI() }))

	suite.Equal([]types.IndicatorType{types.IndicatorTypeATR, types.IndicatorTypeRSI}, suite.registry.ListIndicators())
}

func (suite *RegistryUnitTestSuite) TestRemove() {
	suite.NoError(suite.registry.RegisterIndicator(types.IndicatorTypeRSI, func() Indicator { return NewRSI() }))
	suite.NoError(suite.registry.RemoveIndicator(types.IndicatorTypeRSI))
	suite.Empty(suite.registry.ListIndicators())

	err := suite.registry.RemoveIndicator(types.IndicatorTypeRSI)
	suite.Error(err)
}

func (suite *RegistryUnitTestSuite) TestDefaultRegistryHasFullSet() {
	registry := NewDefaultIndicatorRegistry()
	names := registry.ListIndicators()

	suite.Len(names, 12)
	suite.Equal(types.IndicatorTypeMovingAverages, names[0])
	suite.Contains(names, types.IndicatorTypeTimeCycle)

	// Factories return fresh instances, never shared state.
	factory, err := registry.GetIndicator(types.IndicatorTypeRSI)
	suite.Require().NoError(err)
	suite.NotSame(factory(), factory())
}
