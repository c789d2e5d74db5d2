package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorUnitTestSuite struct {
	suite.Suite
}

func TestErrorUnitSuite(t *testing.T) {
	suite.Run(t, new(ErrorUnitTestSuite))
}

func (suite *ErrorUnitTestSuite) TestNew() {
	err := New(ErrCodeInvalidParameter, "bad value")
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("[100] bad value", err.Error())
}

func (suite *ErrorUnitTestSuite) TestNewf() {
	err := Newf(ErrCodeDataNotFound, "no bars for %s", "AAPL")
	suite.Equal("[200] no bars for AAPL", err.Error())
}

func (suite *ErrorUnitTestSuite) TestWrapPreservesCause() {
	cause := fmt.Errorf("disk full")
	err := Wrap(ErrCodeQueryFailed, "failed to execute query", cause)

	suite.Contains(err.Error(), "disk full")
	suite.Equal(cause, err.Unwrap())
	suite.True(Is(err, cause))
}

func (suite *ErrorUnitTestSuite) TestGetCode() {
	err := New(ErrCodeUnsortedSeries, "out of order")
	suite.Equal(ErrCodeUnsortedSeries, GetCode(err))

	wrapped := fmt.Errorf("outer: %w", err)
	suite.Equal(ErrCodeUnsortedSeries, GetCode(wrapped))

	suite.Equal(ErrCodeUnknown, GetCode(fmt.Errorf("plain")))
	suite.Equal(ErrCodeUnknown, GetCode(nil))
}

func (suite *ErrorUnitTestSuite) TestHasCode() {
	err := Wrap(ErrCodeBacktestCancelled, "cancelled", fmt.Errorf("context canceled"))
	suite.True(HasCode(err, ErrCodeBacktestCancelled))
	suite.False(HasCode(err, ErrCodeBacktestConfigError))
}

func (suite *ErrorUnitTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataErrorf(14, 5, "AAPL", "need %d bars, have %d", 14, 5)
	suite.Equal("need 14 bars, have 5", err.Error())
	suite.Equal(14, err.Required)
	suite.Equal(5, err.Actual)

	suite.True(IsInsufficientDataError(err))
	suite.True(IsInsufficientDataError(fmt.Errorf("wrapped: %w", err)))
	suite.False(IsInsufficientDataError(fmt.Errorf("plain")))
}
