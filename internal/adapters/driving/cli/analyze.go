package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kinolens/kinolens-cli/internal/adapters/driven/chart"
	configfile "github.com/kinolens/kinolens-cli/internal/adapters/driven/config/file"
	"github.com/kinolens/kinolens-cli/internal/adapters/driven/dataset"
	"github.com/kinolens/kinolens-cli/internal/adapters/driven/report"
	"github.com/kinolens/kinolens-cli/internal/adapters/driven/segment"
	"github.com/kinolens/kinolens-cli/internal/adapters/driven/storage/sqlite"
	"github.com/kinolens/kinolens-cli/internal/core/domain"
	"github.com/kinolens/kinolens-cli/internal/core/services"
)

var (
	analyzeOut       string
	analyzeTopN      int
	analyzeDPI       int
	analyzeSample    int
	analyzeSeed      int64
	analyzeExportDB  bool
	analyzeStopwords []string
	analyzePosMin    int
	analyzeNegMax    int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [dataset]",
	Short: "Run the full analysis pipeline on a review dataset",
	Long: `Loads the dataset, cleans and labels the records, extracts keywords,
computes aggregate statistics, and writes chart images plus a markdown
report into the output directory. Re-running overwrites the previous
outputs.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", domain.DefaultOutputDir, "output directory for artifacts")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top", domain.DefaultTopN, "keyword ranking size")
	analyzeCmd.Flags().IntVar(&analyzeDPI, "dpi", domain.DefaultDPI, "chart image resolution")
	analyzeCmd.Flags().IntVar(&analyzeSample, "sample", 0, "analyze a fixed-seed uniform sample of this size (0 = all)")
	analyzeCmd.Flags().Int64Var(&analyzeSeed, "seed", domain.DefaultSampleSeed, "sampling seed")
	analyzeCmd.Flags().BoolVar(&analyzeExportDB, "export-db", false, "additionally export aggregation tables to stats.db")
	analyzeCmd.Flags().StringSliceVar(&analyzeStopwords, "stopword", nil, "extra stop words (repeatable)")
	analyzeCmd.Flags().IntVar(&analyzePosMin, "positive-min", domain.DefaultPositiveMin, "lowest star rating labeled positive")
	analyzeCmd.Flags().IntVar(&analyzeNegMax, "negative-max", domain.DefaultNegativeMax, "highest star rating labeled negative")
	rootCmd.AddCommand(analyzeCmd)
}

// buildConfig layers configuration: defaults, then the TOML file, then
// any flags the user set explicitly.
func buildConfig(cmd *cobra.Command, input string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	path, explicit := configfile.DefaultPath(), false
	if configFlag != "" {
		path, explicit = configFlag, true
	}
	if path != "" {
		var err error
		cfg, err = configfile.Apply(path, explicit, cfg)
		if err != nil {
			return cfg, err
		}
	}

	cfg.InputPath = input
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.OutputDir = analyzeOut
	}
	if flags.Changed("top") {
		cfg.TopN = analyzeTopN
	}
	if flags.Changed("dpi") {
		cfg.DPI = analyzeDPI
	}
	if flags.Changed("sample") {
		cfg.SampleSize = analyzeSample
	}
	if flags.Changed("seed") {
		cfg.SampleSeed = analyzeSeed
	}
	if flags.Changed("export-db") {
		cfg.ExportDB = analyzeExportDB
	}
	if flags.Changed("positive-min") {
		cfg.PositiveMin = analyzePosMin
	}
	if flags.Changed("negative-max") {
		cfg.NegativeMax = analyzeNegMax
	}
	cfg.ExtraStopwords = append(cfg.ExtraStopwords, analyzeStopwords...)

	return cfg, cfg.Validate()
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	seg, err := segment.NewGSE()
	if err != nil {
		return fmt.Errorf("initialising segmenter: %w", err)
	}

	pipeline := services.New(
		dataset.NewLoader(),
		seg,
		chart.New(cfg.DPI),
		report.NewMarkdown(),
		sqlite.NewExporter(),
		cfg,
	)

	run, err := pipeline.Run(cmd.Context())
	if err != nil {
		return err
	}

	printSummary(cmd, run)
	return nil
}

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	summaryLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(12)
	summaryWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func printSummary(cmd *cobra.Command, run *domain.RunReport) {
	cmd.Println(summaryTitleStyle.Render("Analysis complete"))
	cmd.Println()

	line := func(label, value string) {
		cmd.Printf("%s %s\n", summaryLabelStyle.Render(label), value)
	}
	line("Records", fmt.Sprintf("%d retained of %d loaded", run.Stats.Retained, run.Summary.Records))
	line("Movies", fmt.Sprintf("%d", run.Summary.DistinctMovies))
	line("Artifacts", fmt.Sprintf("%d", len(run.Artifacts)))
	line("Report", run.ReportPath)
	line("Duration", run.Duration.Round(time.Millisecond).String())

	if len(run.Warnings) > 0 {
		cmd.Println()
		cmd.Println(summaryWarnStyle.Render(fmt.Sprintf("%d warnings:", len(run.Warnings))))
		for _, w := range run.Warnings {
			cmd.Println(summaryWarnStyle.Render("  - " + w))
		}
	}

	var failed []string
	for stage, status := range run.Stages {
		if status == domain.StageFailed {
			failed = append(failed, stage)
		}
	}
	if len(failed) > 0 {
		cmd.Println()
		cmd.Println(summaryWarnStyle.Render("Degraded stages: " + strings.Join(failed, ", ")))
	}
}
