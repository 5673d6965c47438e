package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// File.Apply. Callers compare them with errors.Is.
var (
	// ErrNoSeeds is returned when the seed list is empty.
	ErrNoSeeds = errors.New("no seeds specified")

	// ErrInvalidSeed is returned when a seed has no usable host.
	ErrInvalidSeed = errors.New("invalid seed")

	// ErrEmptyOutputDir is returned when no output directory is configured.
	ErrEmptyOutputDir = errors.New("output directory must not be empty")

	// ErrInvalidScheme is returned for a scheme other than http or https.
	ErrInvalidScheme = errors.New("invalid scheme: must be http or https")

	// ErrInvalidTimeout is returned when a fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidWorkers is returned when the worker count is negative.
	// Zero is valid and means one worker per seed.
	ErrInvalidWorkers = errors.New("invalid worker count: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidAcceptLanguage is returned when the language list is empty or
	// holds a tag that is not valid BCP 47.
	ErrInvalidAcceptLanguage = errors.New("invalid accept-language")

	// ErrConflictingReportFormats is returned when both Markdown and JSON
	// summaries are requested.
	ErrConflictingReportFormats = errors.New("markdown and json reports are mutually exclusive")

	// ErrEmptyDBDir is returned when history is enabled without a directory.
	ErrEmptyDBDir = errors.New("database directory must not be empty when history is enabled")
)
