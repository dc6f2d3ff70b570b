package apperrors

import "errors"

// Schema errors represent a raw input table that cannot be aggregated at all.
// These are fatal to panel construction and abort before any aggregation runs.
var (
	// ErrMissingDateColumn indicates the raw table has no reference-date column.
	ErrMissingDateColumn = errors.New("raw table has no reference-date column")

	// ErrMissingTickerColumn indicates the raw table has no ticker column.
	ErrMissingTickerColumn = errors.New("raw table has no ticker column")

	// ErrMissingPriceColumn indicates no price column could be resolved from the
	// known alias names.
	ErrMissingPriceColumn = errors.New("no price column resolvable from known aliases")

	// ErrInvalidCSVHeaders indicates the CSV header row is missing or malformed.
	ErrInvalidCSVHeaders = errors.New("invalid CSV headers")
)

// Domain entity errors represent missing entities in the system.
var (
	// ErrSessionNotFound indicates that a session with the given ID does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrPositionNotFound indicates the portfolio holds no position for the ticker.
	ErrPositionNotFound = errors.New("position not found")

	// ErrRunNotFound indicates that a simulation run with the given ID does not exist.
	ErrRunNotFound = errors.New("simulation run not found")

	// ErrSettingNotFound indicates that a system setting key has no stored value.
	ErrSettingNotFound = errors.New("system setting not found")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInvalidQuarter indicates a fiscal quarter outside 1-4.
	ErrInvalidQuarter = errors.New("fiscal quarter must be between 1 and 4")

	// ErrInvalidYear indicates a fiscal year outside the plausible range.
	ErrInvalidYear = errors.New("fiscal year out of range")

	// ErrIncompletePeriod indicates a replay was requested before both the base
	// year and quarter were selected.
	ErrIncompletePeriod = errors.New("base period must have both year and quarter set")

	// ErrEmptyTicker indicates a position with a blank ticker.
	ErrEmptyTicker = errors.New("ticker cannot be empty")

	// ErrNonPositiveQuantity indicates a position quantity that is not > 0.
	ErrNonPositiveQuantity = errors.New("quantity must be a positive integer")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. Per-ticker data gaps are never errors: they are handled by
// exclusion lists and NaN propagation inside the replay.
var (
	ErrFailedToRetrieveRecords  = errors.New("failed to retrieve statement records")
	ErrFailedToRetrievePanel    = errors.New("failed to retrieve quarterly panel")
	ErrFailedToRetrieveHistory  = errors.New("failed to retrieve run history")
	ErrFailedToRetrieveSnapshot = errors.New("failed to retrieve latest snapshot")
	ErrFailedToImportRecords    = errors.New("failed to import statement records")
	ErrFailedToRebuildPanel     = errors.New("failed to rebuild quarterly panel")
	ErrFailedToSaveRun          = errors.New("failed to save simulation run")

	// ErrFeedNotConfigured indicates the statement feed URL is not set.
	ErrFeedNotConfigured = errors.New("statement feed is not configured")

	// ErrEncryptionKeyNotConfigured indicates no fernet key is available for
	// encrypting stored secrets.
	ErrEncryptionKeyNotConfigured = errors.New("encryption key is not configured")
)
