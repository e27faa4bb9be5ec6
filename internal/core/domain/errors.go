package domain

import "errors"

// Domain errors represent analysis pipeline failures.
// Fatal errors abort the run; the rest are recovered locally and
// accumulated as warnings on the run report.
var (
	// ErrDataSource indicates the input file is missing, unreadable,
	// or its schema lacks required columns. Fatal before any stage runs.
	ErrDataSource = errors.New("data source error")

	// ErrMalformedRecord indicates a single row failed validation.
	// Recovered by drop-or-default, counted, never fatal.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrEmptyResult indicates a grouping produced no rows.
	// Recovered by rendering a placeholder artifact or section.
	ErrEmptyResult = errors.New("empty aggregation result")

	// ErrRender indicates a single chart failed to draw.
	// That artifact is skipped and logged; the run continues.
	ErrRender = errors.New("render error")

	// ErrReportWrite indicates the report document could not be written.
	// Fatal, aborts the run with a non-zero exit.
	ErrReportWrite = errors.New("report write error")

	// ErrOutputDir indicates the output directory could not be created
	// or written. Fatal.
	ErrOutputDir = errors.New("output directory error")

	// ErrInvalidConfig indicates the analysis configuration failed
	// validation before the pipeline started.
	ErrInvalidConfig = errors.New("invalid configuration")
)
