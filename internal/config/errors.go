package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoDataset is returned when no primary dataset path is configured.
	ErrNoDataset = errors.New("no dataset specified: provide a dataset path or set it in the config file")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent passes, effectively
	// stopping batch validation.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrOutputWithMultipleDatasets is returned when --output is combined
	// with more than one dataset. Each pass truncates the file on open, so
	// a shared path would keep only the last-finished report.
	ErrOutputWithMultipleDatasets = errors.New("conflicting output options: --output cannot be used with multiple datasets")

	// ErrEmptyRefMarker is returned when the attribution marker is cleared.
	// An empty marker would make the attribution rule pass vacuously.
	ErrEmptyRefMarker = errors.New("invalid ref marker: must be non-empty")

	// ErrNoSchemes is returned when the accepted scheme list is cleared.
	// With no accepted schemes every URL would fail the protocol rule.
	ErrNoSchemes = errors.New("invalid schemes: at least one accepted scheme prefix is required")
)
