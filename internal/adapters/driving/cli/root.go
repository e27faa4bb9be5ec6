// Package cli implements the kinolens command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kinolens/kinolens-cli/internal/logger"
)

// version is the build version, set by main at startup.
var version = "dev"

var (
	verboseFlag bool
	configFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "kinolens",
	Short: "Batch analysis of film review datasets",
	Long: `KinoLens ingests a tabular film-review dataset (.csv or .xlsx) and
produces sentiment statistics, keyword rankings, chart images, and a
markdown report in one batch run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "print pipeline progress to stderr")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to a TOML config file (default ~/.kinolens/config.toml)")
}

// SetVersion records the build version shown by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. The context carries process-level
// cancellation down into the pipeline stages.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
