package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInvalidThreshold     ErrorCode = 103
	ErrCodeInvalidType          ErrorCode = 104
	ErrCodeMissingParameter     ErrorCode = 105
	ErrCodeInvalidBar           ErrorCode = 106
	ErrCodeInvalidSignal        ErrorCode = 107
	ErrCodeInvalidLabel         ErrorCode = 108

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeUnsortedSeries        ErrorCode = 203
	ErrCodeEmptySeries           ErrorCode = 204
	ErrCodeMissingColumn         ErrorCode = 205

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302
	ErrCodeInsufficientData       ErrorCode = 303

	// Detector errors (400-499)
	ErrCodeDetectorNotFound      ErrorCode = 400
	ErrCodeDetectorAlreadyExists ErrorCode = 401
	ErrCodeDetectorConfigError   ErrorCode = 402

	// Labeling errors (500-599)
	ErrCodeLabelingFailed   ErrorCode = 500
	ErrCodeNegativeSampling ErrorCode = 501
	ErrCodeDuplicateLabel   ErrorCode = 502
	ErrCodeLabelWriteFailed ErrorCode = 503

	// Backtest errors (600-699)
	ErrCodeBacktestConfigError ErrorCode = 600
	ErrCodeEntryBarNotFound    ErrorCode = 601
	ErrCodeBacktestCancelled   ErrorCode = 602
	ErrCodeNoTrades            ErrorCode = 603

	// Artifact errors (700-799)
	ErrCodeArtifactWriteFailed ErrorCode = 700
	ErrCodeArtifactReadFailed  ErrorCode = 701
)
