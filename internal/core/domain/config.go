package domain

import "fmt"

// Default configuration values. The default sentiment thresholds
// partition star ratings as {1,2} negative, {3} neutral, {4,5} positive.
const (
	DefaultTopN        = 50
	DefaultNegativeMax = 2
	DefaultPositiveMin = 4
	DefaultDPI         = 300
	DefaultSampleSeed  = 42
	DefaultOutputDir   = "analysis_results"

	// DefaultUsername replaces a missing reviewer name.
	DefaultUsername = "匿名用户"
)

// Config is the immutable analysis configuration. It is built once by
// the CLI (defaults, then config file, then flags) and passed explicitly
// into the pipeline; stages never consult ambient state.
type Config struct {
	// InputPath is the tabular dataset (.csv or .xlsx).
	InputPath string

	// OutputDir receives all artifacts. Created idempotently per run.
	OutputDir string

	// TopN bounds the keyword rankings.
	TopN int

	// ExtraStopwords extends the built-in stop-word set.
	ExtraStopwords []string

	// NegativeMax and PositiveMin bound the sentiment partition:
	// star <= NegativeMax is negative, star >= PositiveMin is positive,
	// anything between is neutral.
	NegativeMax int
	PositiveMin int

	// DPI is the resolution of rendered chart images.
	DPI int

	// SampleSize, when positive, caps the table at a uniform random
	// sample drawn with SampleSeed for reproducibility. Zero means all.
	SampleSize int
	SampleSeed int64

	// ExportDB additionally writes the tabular aggregation results
	// into a SQLite file in the output directory.
	ExportDB bool
}

// DefaultConfig returns a Config with every option at its default.
func DefaultConfig() Config {
	return Config{
		OutputDir:   DefaultOutputDir,
		TopN:        DefaultTopN,
		NegativeMax: DefaultNegativeMax,
		PositiveMin: DefaultPositiveMin,
		DPI:         DefaultDPI,
		SampleSeed:  DefaultSampleSeed,
	}
}

// Validate checks the configuration before the pipeline starts.
func (c Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("%w: input path is required", ErrInvalidConfig)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output directory is required", ErrInvalidConfig)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("%w: top-N must be positive, got %d", ErrInvalidConfig, c.TopN)
	}
	if c.DPI <= 0 {
		return fmt.Errorf("%w: DPI must be positive, got %d", ErrInvalidConfig, c.DPI)
	}
	if c.NegativeMax >= c.PositiveMin {
		return fmt.Errorf("%w: negative-max (%d) must be below positive-min (%d)",
			ErrInvalidConfig, c.NegativeMax, c.PositiveMin)
	}
	if c.SampleSize < 0 {
		return fmt.Errorf("%w: sample size cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Classify maps a star rating to its sentiment label. The function is
// pure and total over the valid 1-5 rating domain: the same rating
// always yields the same label.
func (c Config) Classify(star int) Sentiment {
	switch {
	case star <= c.NegativeMax:
		return Negative
	case star >= c.PositiveMin:
		return Positive
	default:
		return Neutral
	}
}
