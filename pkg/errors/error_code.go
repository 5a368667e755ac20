package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199). Fatal at harness startup: no
	// simulation work starts while any of them is present.
	ErrCodeInvalidConfiguration ErrorCode = 100
	ErrCodeInvalidFoldPlan      ErrorCode = 101
	ErrCodeOverlappingFolds     ErrorCode = 102
	ErrCodeNegativeLimit        ErrorCode = 103
	ErrCodeInvalidSlippageModel ErrorCode = 104
	ErrCodeInvalidLatencyModel  ErrorCode = 105
	ErrCodeMissingParameter     ErrorCode = 106
	ErrCodeInvalidVersion       ErrorCode = 107

	// Data errors (200-299)
	ErrCodeDataIntegrity        ErrorCode = 200
	ErrCodeNonMonotonicBars     ErrorCode = 201
	ErrCodeDuplicateTimestamp   ErrorCode = 202
	ErrCodeSignalAlignment      ErrorCode = 203
	ErrCodeDataSourceUnreadable ErrorCode = 204
	ErrCodeEmptyFeed            ErrorCode = 205

	// Execution errors (300-399)
	ErrCodeSessionHalted  ErrorCode = 300
	ErrCodeInvalidOrder   ErrorCode = 301
	ErrCodeLedgerOrdering ErrorCode = 302

	// Evaluation errors (400-499)
	ErrCodeNumericDegeneracy ErrorCode = 400
	ErrCodeEmptyLedger       ErrorCode = 401

	// Validation-harness errors (500-599)
	ErrCodeFoldFailed   ErrorCode = 500
	ErrCodeRunCancelled ErrorCode = 501
	ErrCodeExportFailed ErrorCode = 502
)
