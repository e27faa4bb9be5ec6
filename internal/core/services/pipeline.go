package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
	"github.com/kinolens/kinolens-cli/internal/core/ports/driven"
	"github.com/kinolens/kinolens-cli/internal/logger"
)

// Pipeline stage names, used in stage status maps and diagnostics.
const (
	StageLoad       = "load"
	StagePreprocess = "preprocess"
	StageLexical    = "lexical"
	StageAggregate  = "aggregate"
	StageCharts     = "charts"
	StageReport     = "report"
	StageExport     = "export"
)

// Pipeline sequences the analysis stages and owns the output directory
// lifecycle. Stage failures follow the error taxonomy: loading,
// preprocessing, aggregation, and report writing are fatal; a lexical
// failure only suppresses the keyword artifacts; chart and export
// failures degrade to warnings.
type Pipeline struct {
	loader   driven.DatasetLoader
	seg      driven.Segmenter
	renderer driven.ChartRenderer
	report   driven.ReportWriter
	exporter driven.ResultExporter
	cfg      domain.Config
}

// New creates a pipeline. The exporter may be nil; it is only consulted
// when cfg.ExportDB is set.
func New(
	loader driven.DatasetLoader,
	seg driven.Segmenter,
	renderer driven.ChartRenderer,
	report driven.ReportWriter,
	exporter driven.ResultExporter,
	cfg domain.Config,
) *Pipeline {
	return &Pipeline{
		loader:   loader,
		seg:      seg,
		renderer: renderer,
		report:   report,
		exporter: exporter,
		cfg:      cfg,
	}
}

// Run executes the full analysis. On success the returned RunReport
// lists every artifact written; on failure the error names the stage
// that failed. Re-running with the same output directory overwrites the
// previous artifacts rather than erroring.
func (p *Pipeline) Run(ctx context.Context) (*domain.RunReport, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	run := &domain.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Stages:    make(map[string]domain.StageStatus),
	}
	defer func() { run.Duration = time.Since(run.StartedAt) }()

	logger.Stage("run " + run.RunID)

	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return run, fmt.Errorf("%w: creating %s: %v", domain.ErrOutputDir, p.cfg.OutputDir, err)
	}

	logger.Stage(StageLoad)
	ds, err := p.loader.Load(ctx, p.cfg.InputPath)
	if err != nil {
		run.Stages[StageLoad] = domain.StageFailed
		return run, fmt.Errorf("stage %s: %w", StageLoad, err)
	}
	run.Stages[StageLoad] = domain.StageOK
	run.Summary = ds.Summary
	logger.Info("loaded %d records, %d fields, %d movies, %d users",
		ds.Summary.Records, ds.Summary.Fields, ds.Summary.DistinctMovies, ds.Summary.DistinctUsers)

	logger.Stage(StagePreprocess)
	table, err := Preprocess(ctx, ds, p.cfg)
	if err != nil {
		run.Stages[StagePreprocess] = domain.StageFailed
		return run, fmt.Errorf("stage %s: %w", StagePreprocess, err)
	}
	run.Stages[StagePreprocess] = domain.StageOK
	run.Stats = table.Stats

	// The lexical analyzer and the aggregator are independent readers
	// of the immutable cleaned table; run them concurrently.
	logger.Stage(StageLexical + " + " + StageAggregate)
	var (
		lex    *domain.LexicalResult
		lexErr error
		agg    *domain.AggregateResult
		aggErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		lex, lexErr = AnalyzeText(ctx, table, p.seg, p.cfg)
	}()
	agg, aggErr = Aggregate(ctx, table, p.cfg)
	<-done

	if aggErr != nil {
		run.Stages[StageAggregate] = domain.StageFailed
		return run, fmt.Errorf("stage %s: %w", StageAggregate, aggErr)
	}
	run.Stages[StageAggregate] = domain.StageOK

	if lexErr != nil {
		// Keyword charts and sections degrade to placeholders; the
		// rest of the run proceeds on the aggregation results.
		run.Stages[StageLexical] = domain.StageFailed
		run.Warnings = append(run.Warnings, fmt.Sprintf("lexical analysis failed: %v", lexErr))
		logger.Warn("lexical analysis failed: %v", lexErr)
		lex = nil
	} else {
		run.Stages[StageLexical] = domain.StageOK
	}

	results := &domain.AnalysisResults{
		Summary:   ds.Summary,
		Stats:     table.Stats,
		Aggregate: agg,
		Lexical:   lex,
		Warnings:  append(statWarnings(table.Stats), run.Warnings...),
	}

	// Chart warnings stay off the results: the report is an independent
	// view of the same aggregation results and must not change with the
	// outcome of chart generation.
	logger.Stage(StageCharts)
	artifacts, chartWarnings := p.renderer.RenderAll(ctx, results, p.cfg.OutputDir)
	run.Artifacts = append(run.Artifacts, artifacts...)
	if len(chartWarnings) > 0 {
		run.Stages[StageCharts] = domain.StageFailed
	} else {
		run.Stages[StageCharts] = domain.StageOK
	}
	for _, a := range artifacts {
		logger.Artifact(a)
	}

	logger.Stage(StageReport)
	reportPath, err := p.report.Write(ctx, results, p.cfg.OutputDir)
	if err != nil {
		run.Stages[StageReport] = domain.StageFailed
		run.Warnings = append(results.Warnings, chartWarnings...)
		return run, fmt.Errorf("stage %s: %w", StageReport, err)
	}
	run.Stages[StageReport] = domain.StageOK
	run.ReportPath = reportPath
	run.Artifacts = append(run.Artifacts, reportPath)
	logger.Artifact(reportPath)

	if p.cfg.ExportDB && p.exporter != nil {
		logger.Stage(StageExport)
		dbPath, err := p.exporter.Export(ctx, results, p.cfg.OutputDir)
		if err != nil {
			run.Stages[StageExport] = domain.StageFailed
			results.Warnings = append(results.Warnings, fmt.Sprintf("result export failed: %v", err))
			logger.Warn("result export failed: %v", err)
		} else {
			run.Stages[StageExport] = domain.StageOK
			run.Artifacts = append(run.Artifacts, dbPath)
			logger.Artifact(dbPath)
		}
	}

	run.Warnings = append(results.Warnings, chartWarnings...)
	return run, nil
}

// statWarnings surfaces the recovered preprocessing anomalies so they
// are never silently dropped.
func statWarnings(s domain.PreprocessStats) []string {
	var w []string
	if s.DroppedNoStar > 0 {
		w = append(w, fmt.Sprintf("dropped %d records with a missing or invalid star rating", s.DroppedNoStar))
	}
	if s.ImputedScores > 0 {
		w = append(w, fmt.Sprintf("imputed %d missing movie scores from movie or global means", s.ImputedScores))
	}
	if s.BadTimestamps > 0 {
		w = append(w, fmt.Sprintf("%d records with malformed timestamps excluded from time trends", s.BadTimestamps))
	}
	return w
}
