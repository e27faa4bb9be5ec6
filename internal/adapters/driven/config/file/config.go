// Package file loads analysis configuration overrides from a TOML file.
// Values are applied over the defaults; CLI flags still take precedence
// over both.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
)

// DefaultPath returns the conventional config location,
// ~/.kinolens/config.toml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kinolens", "config.toml")
}

// fileConfig mirrors domain.Config with optional fields, so absent keys
// leave the corresponding defaults untouched.
type fileConfig struct {
	OutputDir   *string  `toml:"output_dir"`
	TopN        *int     `toml:"top_n"`
	Stopwords   []string `toml:"stopwords"`
	NegativeMax *int     `toml:"negative_max"`
	PositiveMin *int     `toml:"positive_min"`
	DPI         *int     `toml:"dpi"`
	SampleSize  *int     `toml:"sample_size"`
	SampleSeed  *int64   `toml:"sample_seed"`
	ExportDB    *bool    `toml:"export_db"`
}

// Apply overlays the TOML file at path onto cfg. When path is the
// default location and the file does not exist, cfg is returned
// unchanged; an explicitly configured path must exist.
func Apply(path string, explicit bool, cfg domain.Config) (domain.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(raw, &fc); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.OutputDir != nil {
		cfg.OutputDir = *fc.OutputDir
	}
	if fc.TopN != nil {
		cfg.TopN = *fc.TopN
	}
	if len(fc.Stopwords) > 0 {
		cfg.ExtraStopwords = append(cfg.ExtraStopwords, fc.Stopwords...)
	}
	if fc.NegativeMax != nil {
		cfg.NegativeMax = *fc.NegativeMax
	}
	if fc.PositiveMin != nil {
		cfg.PositiveMin = *fc.PositiveMin
	}
	if fc.DPI != nil {
		cfg.DPI = *fc.DPI
	}
	if fc.SampleSize != nil {
		cfg.SampleSize = *fc.SampleSize
	}
	if fc.SampleSeed != nil {
		cfg.SampleSeed = *fc.SampleSeed
	}
	if fc.ExportDB != nil {
		cfg.ExportDB = *fc.ExportDB
	}
	return cfg, nil
}
