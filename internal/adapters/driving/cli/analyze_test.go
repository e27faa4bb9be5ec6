package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
)

// resetFlags restores the analyze flag set between tests; cobra flag
// state is package-global.
func resetFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		analyzeCmd.Flags().VisitAll(func(f *pflag.Flag) {
			f.Changed = false
			_ = f.Value.Set(f.DefValue)
		})
		configFlag = ""
		analyzeStopwords = nil
	}
	reset()
	t.Cleanup(reset)
}

func TestBuildConfig_Defaults(t *testing.T) {
	resetFlags(t)

	cfg, err := buildConfig(analyzeCmd, "reviews.csv")
	require.NoError(t, err)

	assert.Equal(t, "reviews.csv", cfg.InputPath)
	assert.Equal(t, domain.DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, domain.DefaultTopN, cfg.TopN)
	assert.Equal(t, domain.DefaultDPI, cfg.DPI)
}

func TestBuildConfig_FlagsOverrideDefaults(t *testing.T) {
	resetFlags(t)

	require.NoError(t, analyzeCmd.Flags().Set("out", "custom"))
	require.NoError(t, analyzeCmd.Flags().Set("top", "15"))
	require.NoError(t, analyzeCmd.Flags().Set("export-db", "true"))

	cfg, err := buildConfig(analyzeCmd, "reviews.csv")
	require.NoError(t, err)

	assert.Equal(t, "custom", cfg.OutputDir)
	assert.Equal(t, 15, cfg.TopN)
	assert.True(t, cfg.ExportDB)
}

func TestBuildConfig_FlagsOverrideFile(t *testing.T) {
	resetFlags(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("top_n = 99\ndpi = 72\n"), 0o644))
	configFlag = path

	require.NoError(t, analyzeCmd.Flags().Set("top", "15"))

	cfg, err := buildConfig(analyzeCmd, "reviews.csv")
	require.NoError(t, err)

	// The flag wins over the file; the file wins over the default.
	assert.Equal(t, 15, cfg.TopN)
	assert.Equal(t, 72, cfg.DPI)
}

func TestBuildConfig_MissingExplicitConfig(t *testing.T) {
	resetFlags(t)
	configFlag = filepath.Join(t.TempDir(), "absent.toml")

	_, err := buildConfig(analyzeCmd, "reviews.csv")
	require.Error(t, err)
}

func TestBuildConfig_InvalidCombination(t *testing.T) {
	resetFlags(t)

	require.NoError(t, analyzeCmd.Flags().Set("negative-max", "5"))
	require.NoError(t, analyzeCmd.Flags().Set("positive-min", "2"))

	_, err := buildConfig(analyzeCmd, "reviews.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
